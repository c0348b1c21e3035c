package dashboard

// DashboardStats is today's attendance overview.
type DashboardStats struct {
	TotalEmployees      int64   `json:"totalEmployees"`
	PresentToday        int64   `json:"presentToday"`
	LateToday           int64   `json:"lateToday"`
	AbsentToday         int64   `json:"absentToday"`
	AverageWorkingHours float64 `json:"averageWorkingHours"`
}
