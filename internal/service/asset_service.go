package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/weiawesome/framez/internal/imageproc"
	pkglog "github.com/weiawesome/framez/pkg/log"
	"github.com/weiawesome/framez/pkg/storage"
)

// assetService implements AssetService.
type assetService struct {
	storage storage.Storage
	presets map[AssetKind]imageproc.Preset
	now     func() time.Time
}

// NewAssetService creates an AssetService with the given presets.
func NewAssetService(st storage.Storage, post, avatar imageproc.Preset) AssetService {
	return &assetService{
		storage: st,
		presets: map[AssetKind]imageproc.Preset{
			AssetPost:   post,
			AssetAvatar: avatar,
		},
		now: time.Now,
	}
}

// objectKey is {kind}/{userID}/{unixMillis}_{random}.jpg.
func (s *assetService) objectKey(kind AssetKind, userID string) string {
	return fmt.Sprintf("%s/%s/%d_%s.jpg", kind, userID, s.now().UnixMilli(), uuid.NewString()[:8])
}

// UploadImage compresses the image with the preset of kind, stores it and
// returns its public URL.
func (s *assetService) UploadImage(ctx context.Context, userID string, r io.Reader, kind AssetKind) (string, error) {
	preset, ok := s.presets[kind]
	if !ok {
		return "", fmt.Errorf("%w: unknown asset kind %q", ErrValidation, kind)
	}

	data, err := imageproc.Process(r, preset)
	if err != nil {
		if errors.Is(err, imageproc.ErrDecode) {
			return "", invalid(err)
		}
		return "", err
	}

	key := s.objectKey(kind, userID)
	l := pkglog.Ctx(ctx).With().Str(pkglog.FieldObjectKey, key).Logger()

	if err := s.storage.Write(ctx, key, bytes.NewReader(data), int64(len(data)), "image/jpeg"); err != nil {
		l.Error().Err(err).Msg("failed to upload image")
		return "", writeFailed("upload image", err)
	}

	url, err := s.storage.URL(ctx, key)
	if err != nil {
		l.Error().Err(err).Msg("failed to build image url")
		return "", err
	}

	l.Info().Int("bytes", len(data)).Str("kind", string(kind)).Msg("image uploaded")
	return url, nil
}

// DeleteImage removes the object behind url if ownerID uploaded it. URLs
// that point elsewhere or into another user's folder are ignored.
func (s *assetService) DeleteImage(ctx context.Context, ownerID, url string) error {
	l := pkglog.Ctx(ctx)

	key, err := s.storage.KeyFromURL(url)
	if err != nil {
		if errors.Is(err, storage.ErrForeignURL) {
			l.Debug().Str("url", url).Msg("not deleting image from foreign url")
			return nil
		}
		return err
	}
	if !ownedBy(key, ownerID) {
		l.Warn().Str(pkglog.FieldObjectKey, key).Str("owner_id", ownerID).Msg("not deleting image owned by another user")
		return nil
	}

	exists, err := s.storage.Exists(ctx, key)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	if err := s.storage.Delete(ctx, key); err != nil {
		l.Error().Err(err).Str(pkglog.FieldObjectKey, key).Msg("failed to delete image")
		return writeFailed("delete image", err)
	}
	return nil
}

// ownedBy reports whether key lies in one of ownerID's asset folders.
func ownedBy(key, ownerID string) bool {
	if ownerID == "" || strings.ContainsAny(ownerID, "/\\") {
		return false
	}
	for _, kind := range []AssetKind{AssetPost, AssetAvatar} {
		if strings.HasPrefix(key, string(kind)+"/"+ownerID+"/") {
			return true
		}
	}
	return false
}
