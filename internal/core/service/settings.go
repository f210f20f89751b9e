package service

import (
	"time"

	"github.com/rl1809/aspas/internal/core/domain"
)

const (
	DefaultReorderRatio   = 0.3
	DefaultCurrencySymbol = "₹"
)

// Settings carries the shop-wide knobs shared by the services.
type Settings struct {
	IDs            domain.IDGenerator
	Location       *time.Location
	ReorderRatio   float64
	CurrencySymbol string
	Now            func() time.Time
}

func (s Settings) withDefaults() Settings {
	if s.IDs.ShopCode == "" {
		s.IDs = domain.NewIDGenerator("")
	}
	if s.Location == nil {
		s.Location = time.Local
	}
	if s.ReorderRatio <= 0 {
		s.ReorderRatio = DefaultReorderRatio
	}
	if s.CurrencySymbol == "" {
		s.CurrencySymbol = DefaultCurrencySymbol
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	return s
}

func (s Settings) now() time.Time {
	return s.Now().UTC().Truncate(time.Microsecond)
}

func requireAdmin(sess domain.Session) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	if !sess.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}
