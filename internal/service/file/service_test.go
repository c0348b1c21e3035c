package file

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/file"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (file.FileService, *storage.LocalStorage) {
	t.Helper()
	local, err := storage.NewLocalStorage(t.TempDir(), "http://files.test/uploads")
	require.NoError(t, err)
	return NewFileService(local, "attendance"), local
}

func uploadRequest(name, content string) file.UploadAttendanceRequest {
	return file.UploadAttendanceRequest{
		FileName:    name,
		FileContent: base64.StdEncoding.EncodeToString([]byte(content)),
		FileType:    "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	}
}

func TestUploadListDownload(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	up, err := svc.UploadAttendance(ctx, uploadRequest("2024-03-04.xlsx", "sheet-bytes"))
	require.NoError(t, err)
	assert.True(t, up.Success)
	assert.Equal(t, "http://files.test/uploads/attendance/2024-03-04.xlsx", up.FileURL)

	list, err := svc.ListAttendanceFiles(ctx)
	require.NoError(t, err)
	require.Len(t, list.Files, 1)
	assert.Equal(t, "2024-03-04.xlsx", list.Files[0].Name)
	assert.Equal(t, int64(len("sheet-bytes")), list.Files[0].Size)
	assert.NotEmpty(t, list.Files[0].ETag)

	down, err := svc.DownloadAttendance(ctx, file.DownloadAttendanceRequest{FileName: "2024-03-04.xlsx"})
	require.NoError(t, err)
	raw, err := base64.StdEncoding.DecodeString(down.FileContent)
	require.NoError(t, err)
	assert.Equal(t, "sheet-bytes", string(raw))
	assert.Equal(t, ContentType("x.xlsx"), down.ContentType)
}

func TestListIgnoresOtherFolders(t *testing.T) {
	svc, local := newTestService(t)
	ctx := context.Background()

	_, err := local.Upload(ctx, strings.NewReader("x"), "logos/a.png", "image/png")
	require.NoError(t, err)
	_, err = local.Upload(ctx, strings.NewReader("x"), "attendance/archive/old.xlsx", "")
	require.NoError(t, err)

	list, err := svc.ListAttendanceFiles(ctx)
	require.NoError(t, err)
	assert.Empty(t, list.Files)
	assert.NotNil(t, list.Files)
}

func TestDownloadMissing(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.DownloadAttendance(context.Background(), file.DownloadAttendanceRequest{FileName: "nope.xlsx"})
	assert.ErrorIs(t, err, file.ErrFileNotFound)
}

func TestRejectsUnsafeNames(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.UploadAttendance(ctx, uploadRequest("../escape.xlsx", "x"))
	assert.ErrorIs(t, err, file.ErrInvalidFileName)

	_, err = svc.OpenAttendance(ctx, "a/b.xlsx")
	assert.ErrorIs(t, err, file.ErrInvalidFileName)
}

func TestUploadRejectsBadBase64(t *testing.T) {
	svc, _ := newTestService(t)

	req := uploadRequest("a.xlsx", "x")
	req.FileContent = "%%%"
	_, err := svc.UploadAttendance(context.Background(), req)
	assert.Error(t, err)
}

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUploadCompanyLogo(t *testing.T) {
	svc, local := newTestService(t)
	ctx := context.Background()

	url, err := svc.UploadCompanyLogo(ctx, bytes.NewReader(pngOf(t, 1024, 256)), "logo.PNG")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "http://files.test/uploads/logos/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	key := strings.TrimPrefix(url, "http://files.test/uploads/")
	rc, err := local.Download(ctx, key)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 512, cfg.Width)
	assert.Equal(t, 128, cfg.Height)
}

func TestUploadCompanyLogo_Invalid(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.UploadCompanyLogo(ctx, bytes.NewReader(pngOf(t, 4, 4)), "logo.gif")
	assert.ErrorIs(t, err, settings.ErrInvalidLogoType)

	_, err = svc.UploadCompanyLogo(ctx, strings.NewReader("not an image"), "logo.png")
	assert.ErrorIs(t, err, settings.ErrInvalidLogoImage)
}

// pngHeader returns a PNG signature and IHDR chunk declaring a w x h 8-bit
// grayscale image. It carries no pixel data.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8] = 8

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestUploadCompanyLogo_RejectsOversizedDimensions(t *testing.T) {
	svc, local := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		w, h uint32
	}{
		{"huge square", 16000, 16000},
		{"too wide", logoMaxDecodeSide + 1, 10},
		{"too tall", 10, logoMaxDecodeSide + 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.UploadCompanyLogo(ctx, bytes.NewReader(pngHeader(tc.w, tc.h)), "logo.png")
			require.Error(t, err)
			assert.ErrorIs(t, err, settings.ErrInvalidLogoImage)
			assert.Contains(t, err.Error(), "pixels per side")
		})
	}

	keys, err := local.List(ctx, "logos")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestFitWithin(t *testing.T) {
	small := image.NewRGBA(image.Rect(0, 0, 100, 50))
	assert.Same(t, image.Image(small), fitWithin(small, 512))

	tall := fitWithin(image.NewRGBA(image.Rect(0, 0, 300, 1200)), 512)
	assert.Equal(t, 128, tall.Bounds().Dx())
	assert.Equal(t, 512, tall.Bounds().Dy())
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/csv", ContentType("A.CSV"))
	assert.Equal(t, "application/octet-stream", ContentType("blob"))
}
