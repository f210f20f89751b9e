package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rl1809/aspas/internal/core/domain"
	"github.com/rl1809/aspas/internal/logger"
	"github.com/rl1809/aspas/internal/port"
)

// InventoryService manages parts and vendors.
type InventoryService struct {
	store    port.LedgerStore
	audit    *AuditService
	settings Settings
}

func NewInventoryService(store port.LedgerStore, audit *AuditService, settings Settings) *InventoryService {
	return &InventoryService{store: store, audit: audit, settings: settings.withDefaults()}
}

func (s *InventoryService) AddPart(ctx context.Context, sess domain.Session, in domain.NewPart) (string, error) {
	const op = "service.InventoryService.AddPart"

	if err := sess.Validate(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Manufacturer = strings.TrimSpace(in.Manufacturer)
	in.VehicleType = strings.TrimSpace(in.VehicleType)
	if err := in.Validate(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	now := s.settings.now()
	part := domain.Part{
		ID:           s.settings.IDs.Part(),
		Name:         in.Name,
		Manufacturer: in.Manufacturer,
		VehicleType:  in.VehicleType,
		Stock:        in.Stock,
		Price:        in.Price,
		InitialStock: in.Stock,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := s.store.InTx(ctx, func(tx port.LedgerTx) error {
		if err := tx.InsertPart(ctx, part); err != nil {
			return err
		}
		details := fmt.Sprintf("Added part '%s' (ID: %s), Stock: %d, Price: %s",
			part.Name, part.ID, part.Stock, part.Price.String())
		_, err := s.audit.Append(ctx, tx, sess, domain.ActionAddInventory, details)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	logger.Info(ctx, "part added", logger.String("part_id", part.ID), logger.Int("stock", part.Stock))
	return part.ID, nil
}

func (s *InventoryService) DeletePart(ctx context.Context, sess domain.Session, id string) error {
	const op = "service.InventoryService.DeletePart"

	if err := sess.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	id = strings.TrimSpace(id)
	err := s.store.InTx(ctx, func(tx port.LedgerTx) error {
		part, err := tx.GetPart(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.DeletePart(ctx, id); err != nil {
			return err
		}
		details := fmt.Sprintf("Deleted part '%s' (ID: %s)", part.Name, part.ID)
		_, err = s.audit.Append(ctx, tx, sess, domain.ActionDeleteInventory, details)
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	logger.Info(ctx, "part deleted", logger.String("part_id", id))
	return nil
}

func (s *InventoryService) ListParts(ctx context.Context) ([]domain.Part, error) {
	parts, err := s.store.ListParts(ctx, domain.PartFilter{})
	if err != nil {
		return nil, fmt.Errorf("service.InventoryService.ListParts: %w", err)
	}
	return parts, nil
}

// ListSellableParts returns parts with stock left to sell.
func (s *InventoryService) ListSellableParts(ctx context.Context) ([]domain.Part, error) {
	parts, err := s.store.ListParts(ctx, domain.PartFilter{InStockOnly: true})
	if err != nil {
		return nil, fmt.Errorf("service.InventoryService.ListSellableParts: %w", err)
	}
	return parts, nil
}

func (s *InventoryService) AddVendor(ctx context.Context, sess domain.Session, in domain.NewVendor) (string, error) {
	const op = "service.InventoryService.AddVendor"

	if err := requireAdmin(sess); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Contact = strings.TrimSpace(in.Contact)
	in.Parts = strings.TrimSpace(in.Parts)
	if err := in.Validate(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	vendor := domain.Vendor{
		ID:        s.settings.IDs.Vendor(),
		Name:      in.Name,
		Contact:   in.Contact,
		Parts:     in.Parts,
		CreatedAt: s.settings.now(),
	}

	err := s.store.InTx(ctx, func(tx port.LedgerTx) error {
		if err := tx.InsertVendor(ctx, vendor); err != nil {
			return err
		}
		details := fmt.Sprintf("Added vendor '%s' (ID: %s), Contact: %s, Parts: %s",
			vendor.Name, vendor.ID, vendor.Contact, vendor.Parts)
		_, err := s.audit.Append(ctx, tx, sess, domain.ActionAddVendor, details)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return vendor.ID, nil
}

func (s *InventoryService) ListVendors(ctx context.Context, sess domain.Session) ([]domain.Vendor, error) {
	const op = "service.InventoryService.ListVendors"

	if err := requireAdmin(sess); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	vendors, err := s.store.ListVendors(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return vendors, nil
}
