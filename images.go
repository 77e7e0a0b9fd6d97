package inkblog

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"

	"github.com/eringen/inkblog/views"
)

const (
	maxImageWidth = 800
	jpegQuality   = 80
	maxUploadSize = 10 << 20 // 10MB
	uploadsSubdir = "uploads"
)

// processImage decodes an image from src, shrinks it to maxImageWidth if
// wider and re-encodes it as JPEG.
func processImage(src io.Reader, originalName string, now time.Time) (Image, []byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return Image{}, nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w = maxImageWidth
		h = newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return Image{}, nil, fmt.Errorf("encode jpeg: %w", err)
	}

	base := Slugify(strings.TrimSuffix(originalName, filepath.Ext(originalName)))
	if base == "" {
		base = "image"
	}

	return Image{
		Filename:     base + ".jpg",
		OriginalName: originalName,
		Width:        w,
		Height:       h,
		Size:         buf.Len(),
		UploadedAt:   now.UTC().Format(time.RFC3339),
	}, buf.Bytes(), nil
}

func (a *App) uploadsDir() string {
	return filepath.Join(a.staticDir, uploadsSubdir)
}

// uniqueFilename appends a counter to img.Filename until it collides with
// neither a file on disk nor a stored image.
func (a *App) uniqueFilename(ctx context.Context, img *Image) error {
	base := strings.TrimSuffix(img.Filename, ".jpg")
	candidate := img.Filename
	for n := 2; ; n++ {
		_, statErr := os.Stat(filepath.Join(a.uploadsDir(), candidate))
		taken, err := a.Store.ImageExists(ctx, candidate)
		if err != nil {
			return err
		}
		if statErr != nil && !taken {
			img.Filename = candidate
			return nil
		}
		candidate = fmt.Sprintf("%s-%d.jpg", base, n)
	}
}

func (a *App) handleImageUpload(c echo.Context, id Identity) error {
	file, err := c.FormFile("image")
	if err != nil {
		return a.renderImageList(c, id, views.FormErrors{"image": "Choose an image to upload."})
	}
	if file.Size > maxUploadSize {
		return a.renderImageList(c, id, views.FormErrors{"image": "File too large (max 10MB)."})
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	img, data, err := processImage(src, file.Filename, a.now())
	if err != nil {
		return a.renderImageList(c, id, views.FormErrors{"image": "Invalid image: " + err.Error()})
	}

	ctx := c.Request().Context()
	if err := a.uniqueFilename(ctx, &img); err != nil {
		return err
	}
	if err := os.MkdirAll(a.uploadsDir(), 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(a.uploadsDir(), img.Filename), data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	if err := a.Store.SaveImage(ctx, &img); err != nil {
		return err
	}
	a.Logger.Info("image uploaded", "filename", img.Filename, "size", img.Size)

	return c.Redirect(http.StatusSeeOther, "/images")
}

func (a *App) handleImageDelete(c echo.Context) error {
	filename := filepath.Base(c.Param("filename"))
	if filename == "." || filename == "/" || filename == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Filename required")
	}

	// A file already gone from disk is not an error.
	_ = os.Remove(filepath.Join(a.uploadsDir(), filename))

	if err := a.Store.DeleteImage(c.Request().Context(), filename); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/images")
}

func (a *App) handleImageList(c echo.Context, id Identity) error {
	return a.renderImageList(c, id, nil)
}

func (a *App) renderImageList(c echo.Context, id Identity, errs views.FormErrors) error {
	images, err := a.Store.ListImages(c.Request().Context())
	if err != nil {
		return err
	}
	list := make([]views.ImageView, 0, len(images))
	for _, img := range images {
		list = append(list, views.ImageView{
			Filename:     img.Filename,
			URL:          "/static/" + uploadsSubdir + "/" + img.Filename,
			OriginalName: img.OriginalName,
			Width:        img.Width,
			Height:       img.Height,
			Size:         img.Size,
			UploadedAt:   img.UploadedAt,
		})
	}
	return Render(c, views.Images(a.page(c, id, "Images"), list, errs))
}
