package application

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"mime/multipart"
	"slices"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"github.com/mervel/storefront/catalog/domain"
	"github.com/mervel/storefront/core/config"
	"github.com/mervel/storefront/pkg/utils"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
	_ "golang.org/x/image/webp"
)

var extensionByType = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/avif": "avif",
}

// UploadedImage describes a stored product image.
type UploadedImage struct {
	Key       string `json:"key"`
	URL       string `json:"url"`
	Size      int64  `json:"size"`
	SizeHuman string `json:"size_human"`
	Resized   bool   `json:"resized"`
}

// UploadService stores admin product images under the uploads root.
type UploadService struct {
	root    string
	baseURL string
	mount   string
	cfg     config.UploadConfig
	now     func() time.Time
}

func NewUploadService(root, baseURL, mount string, cfg config.UploadConfig) *UploadService {
	return &UploadService{root: root, baseURL: baseURL, mount: mount, cfg: cfg, now: time.Now}
}

// Validate checks the declared content type and the size limit.
func (s *UploadService) Validate(fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", fmt.Errorf("%w: no file provided", domain.ErrInvalidUpload)
	}
	contentType := strings.ToLower(strings.TrimSpace(fh.Header.Get("Content-Type")))
	if !slices.Contains(s.cfg.AllowedTypes, contentType) {
		return "", fmt.Errorf("%w: only JPG, PNG, WebP and AVIF images are allowed", domain.ErrInvalidUpload)
	}
	if fh.Size > s.cfg.MaxImageBytes {
		return "", fmt.Errorf("%w: image is %s, the limit is %s", domain.ErrInvalidUpload,
			humanize.IBytes(uint64(fh.Size)), humanize.IBytes(uint64(s.cfg.MaxImageBytes)))
	}
	if err := checkDecodable(fh, contentType); err != nil {
		return "", err
	}
	return contentType, nil
}

// ObjectKey names an upload as products/{unix-ms}-{rand6}.{ext}.
func (s *UploadService) ObjectKey(contentType string) string {
	ext, ok := extensionByType[contentType]
	if !ok {
		ext = "bin"
	}
	return fmt.Sprintf("products/%d-%s.%s", s.now().UnixMilli(), utils.RandomString(6), ext)
}

// Save validates and persists the file. JPEG and PNG images larger than the
// configured dimension are downscaled in place.
func (s *UploadService) Save(fh *multipart.FileHeader) (*UploadedImage, error) {
	contentType, err := s.Validate(fh)
	if err != nil {
		return nil, err
	}

	key := s.ObjectKey(contentType)
	path, err := utils.UploadPath(s.root, key)
	if err != nil {
		return nil, err
	}
	if err := fasthttp.SaveMultipartFile(fh, path); err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}

	out := &UploadedImage{
		Key:       key,
		URL:       utils.PublicURL(s.baseURL, s.mount, key),
		Size:      fh.Size,
		SizeHuman: humanize.IBytes(uint64(fh.Size)),
	}

	if contentType == "image/jpeg" || contentType == "image/png" {
		resized, err := s.downscale(path)
		if err != nil {
			logrus.Warnf("[CATALOG] Could not downscale %s: %v", key, err)
		}
		out.Resized = resized
	}

	logrus.Infof("[CATALOG] Stored upload %s (%s)", key, out.SizeHuman)
	return out, nil
}

func (s *UploadService) downscale(path string) (bool, error) {
	if s.cfg.MaxDimension <= 0 {
		return false, nil
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return false, err
	}
	b := img.Bounds()
	if b.Dx() <= s.cfg.MaxDimension && b.Dy() <= s.cfg.MaxDimension {
		return false, nil
	}
	fitted := imaging.Fit(img, s.cfg.MaxDimension, s.cfg.MaxDimension, imaging.Lanczos)
	if err := imaging.Save(fitted, path, imaging.JPEGQuality(88)); err != nil {
		return false, err
	}
	return true, nil
}

// checkDecodable makes sure the payload really is the image format it claims to be.
// AVIF has no pure Go decoder and is accepted on its declared type alone.
func checkDecodable(fh *multipart.FileHeader, contentType string) error {
	if contentType == "image/avif" {
		return nil
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	_, format, err := image.DecodeConfig(f)
	if err != nil {
		return fmt.Errorf("%w: file is not a readable image", domain.ErrInvalidUpload)
	}
	if extensionByType[contentType] != normalizeFormat(format) {
		return fmt.Errorf("%w: file content is %s, declared %s", domain.ErrInvalidUpload, format, contentType)
	}
	return nil
}

func normalizeFormat(format string) string {
	if format == "jpeg" {
		return "jpg"
	}
	return format
}
