package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/weiawesome/framez/internal/audit"
	"github.com/weiawesome/framez/internal/domain"
	"github.com/weiawesome/framez/internal/validate"
	pkglog "github.com/weiawesome/framez/pkg/log"
)

var pushTokenPattern = regexp.MustCompile(`^(ExponentPushToken|ExpoPushToken)\[[A-Za-z0-9_-]+\]$`)

// ValidPushToken reports whether token has the Expo push token shape.
func ValidPushToken(token string) bool {
	return pushTokenPattern.MatchString(token)
}

// pushService implements PushService.
type pushService struct {
	profiles ProfileService
}

// NewPushService creates a PushService that stores tokens on profiles.
func NewPushService(profiles ProfileService) PushService {
	return &pushService{profiles: profiles}
}

// Register records the device's push token for userID. Simulators get
// ErrUnavailable; a device without permission registers nothing and is
// not an error.
func (s *pushService) Register(ctx context.Context, userID string, req *domain.PushRegistrationRequest) (*domain.PushRegistrationResponse, error) {
	l := pkglog.Ctx(ctx)

	if err := validate.Struct(req); err != nil {
		return nil, invalid(err)
	}
	if !req.PhysicalDevice {
		return nil, ErrUnavailable
	}
	if !req.PermissionGranted {
		l.Info().Msg("push permission not granted")
		return &domain.PushRegistrationResponse{Registered: false}, nil
	}

	token := strings.TrimSpace(req.Token)
	if !ValidPushToken(token) {
		return nil, fmt.Errorf("%w: malformed push token", ErrValidation)
	}

	s.profiles.UpdatePushToken(ctx, userID, token)
	audit.LogWithDetail(ctx, audit.ActionPushRegister, userID, req.Platform, "push token registered")

	return &domain.PushRegistrationResponse{Token: token, Registered: true}, nil
}
