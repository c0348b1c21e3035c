package file

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // Import for JPEG decoding support
	"image/png"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/file"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/storage"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

const (
	// logoMaxSide bounds both logo dimensions after downscaling.
	logoMaxSide = 512
	// logoMaxDecodeSide bounds the declared dimensions accepted for decoding.
	logoMaxDecodeSide = logoMaxSide * 8

	urlExpiry = time.Hour
)

var contentTypes = map[string]string{
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".xls":  "application/vnd.ms-excel",
	".csv":  "text/csv",
	".pdf":  "application/pdf",
	".txt":  "text/plain",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

type fileServiceImpl struct {
	storage          storage.FileStorage
	attendanceFolder string
}

func NewFileService(storage storage.FileStorage, attendanceFolder string) file.FileService {
	folder := strings.Trim(attendanceFolder, "/")
	if folder == "" {
		folder = "attendance"
	}
	return &fileServiceImpl{
		storage:          storage,
		attendanceFolder: folder,
	}
}

func (s *fileServiceImpl) attendanceKey(name string) string {
	return path.Join(s.attendanceFolder, name)
}

// ContentType guesses the MIME type from the file extension.
func ContentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// UploadAttendance implements file.FileService.
func (s *fileServiceImpl) UploadAttendance(ctx context.Context, req file.UploadAttendanceRequest) (file.UploadAttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return file.UploadAttendanceResponse{}, err
	}

	contentType := strings.TrimSpace(req.FileType)
	if contentType == "" || !strings.Contains(contentType, "/") {
		contentType = ContentType(req.FileName)
	}

	key, err := s.storage.Upload(ctx, bytes.NewReader(req.Content()), s.attendanceKey(req.FileName), contentType)
	if err != nil {
		return file.UploadAttendanceResponse{}, fmt.Errorf("failed to upload attendance file: %w", err)
	}

	url, err := s.storage.GetURL(ctx, key, urlExpiry)
	if err != nil {
		return file.UploadAttendanceResponse{}, fmt.Errorf("failed to resolve attendance file url: %w", err)
	}

	slog.Info("Attendance file uploaded", "key", key, "size", len(req.Content()))
	return file.UploadAttendanceResponse{Success: true, FileURL: url}, nil
}

// ListAttendanceFiles implements file.FileService.
func (s *fileServiceImpl) ListAttendanceFiles(ctx context.Context) (file.ListAttendanceFilesResponse, error) {
	objects, err := s.storage.List(ctx, s.attendanceFolder+"/")
	if err != nil {
		return file.ListAttendanceFilesResponse{}, fmt.Errorf("failed to list attendance files: %w", err)
	}

	files := make([]file.AttendanceFile, 0, len(objects))
	for _, obj := range objects {
		name := strings.TrimPrefix(obj.Key, s.attendanceFolder+"/")
		// Only direct children of the folder
		if name == "" || strings.Contains(name, "/") {
			continue
		}
		files = append(files, file.AttendanceFile{
			Name:         name,
			Size:         obj.Size,
			ETag:         strings.Trim(obj.ETag, `"`),
			LastModified: obj.LastModified,
		})
	}

	return file.ListAttendanceFilesResponse{Success: true, Files: files}, nil
}

// DownloadAttendance implements file.FileService.
func (s *fileServiceImpl) DownloadAttendance(ctx context.Context, req file.DownloadAttendanceRequest) (file.DownloadAttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return file.DownloadAttendanceResponse{}, err
	}

	rc, err := s.OpenAttendance(ctx, req.FileName)
	if err != nil {
		return file.DownloadAttendanceResponse{}, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return file.DownloadAttendanceResponse{}, fmt.Errorf("failed to read attendance file: %w", err)
	}

	return file.DownloadAttendanceResponse{
		Success:     true,
		FileContent: base64.StdEncoding.EncodeToString(data),
		ContentType: ContentType(req.FileName),
	}, nil
}

// OpenAttendance implements file.FileService.
func (s *fileServiceImpl) OpenAttendance(ctx context.Context, name string) (io.ReadCloser, error) {
	if !file.IsSafeName(name) {
		return nil, file.ErrInvalidFileName
	}

	rc, err := s.storage.Download(ctx, s.attendanceKey(name))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, file.ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to download attendance file: %w", err)
	}
	return rc, nil
}

// UploadCompanyLogo implements file.FileService. Every logo is stored as PNG.
func (s *fileServiceImpl) UploadCompanyLogo(ctx context.Context, r io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return "", settings.ErrInvalidLogoType
	}

	data, err := io.ReadAll(io.LimitReader(r, settings.MaxLogoSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read logo: %w", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", settings.ErrInvalidLogoImage, err)
	}
	if cfg.Width > logoMaxDecodeSide || cfg.Height > logoMaxDecodeSide {
		return "", fmt.Errorf("%w: %dx%d exceeds %d pixels per side",
			settings.ErrInvalidLogoImage, cfg.Width, cfg.Height, logoMaxDecodeSide)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", settings.ErrInvalidLogoImage, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, fitWithin(img, logoMaxSide)); err != nil {
		return "", fmt.Errorf("failed to encode logo: %w", err)
	}

	key, err := s.storage.Upload(ctx, &buf, path.Join(settings.LogoFolder, uuid.NewString()+".png"), "image/png")
	if err != nil {
		return "", fmt.Errorf("failed to upload company logo: %w", err)
	}

	url, err := s.storage.GetURL(ctx, key, urlExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to resolve company logo url: %w", err)
	}
	return url, nil
}

// fitWithin scales img down so neither side exceeds maxSide, keeping the
// aspect ratio. Smaller images are returned as is.
func fitWithin(img image.Image, maxSide int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxSide && h <= maxSide {
		return img
	}

	if w >= h {
		h = max(1, h*maxSide/w)
		w = maxSide
	} else {
		w = max(1, w*maxSide/h)
		h = maxSide
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
