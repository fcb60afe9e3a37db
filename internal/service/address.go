package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/Skotchmaster/stationery_shop/internal/models"
	"github.com/Skotchmaster/stationery_shop/internal/repo"
)

type AddressService struct {
	Repo *repo.GormRepo
}

type AddressForm struct {
	Name        string `json:"name" form:"name"`
	Address     string `json:"address" form:"address"`
	RegionID    uint   `json:"region" form:"region"`
	SubRegionID uint   `json:"subregion" form:"subregion"`
	Zip         string `json:"zip" form:"zip"`
}

func (s *AddressService) List(ctx context.Context, userID uint) ([]models.Address, error) {
	return s.Repo.ListAddresses(ctx, userID)
}

func (s *AddressService) Add(ctx context.Context, userID uint, f AddressForm) (*models.Address, error) {
	f.Address = strings.TrimSpace(f.Address)
	f.Zip = strings.TrimSpace(f.Zip)

	var errs ValidationErrors
	switch {
	case f.Address == "":
		errs = append(errs, FieldError{Field: "address", Err: ErrRequired})
	case utf8.RuneCountInString(f.Address) > 400:
		errs = append(errs, FieldError{Field: "address", Err: ErrTooLong})
	}
	switch {
	case f.Zip == "":
		errs = append(errs, FieldError{Field: "zip", Err: ErrRequired})
	case utf8.RuneCountInString(f.Zip) > 50:
		errs = append(errs, FieldError{Field: "zip", Err: ErrTooLong})
	}
	if utf8.RuneCountInString(f.Name) > 100 {
		errs = append(errs, FieldError{Field: "name", Err: ErrTooLong})
	}

	reg, err := s.Repo.GetRegion(ctx, f.RegionID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		errs = append(errs, FieldError{Field: "region", Err: ErrInvalidRegion})
	case err != nil:
		return nil, err
	default:
		sub, err := s.Repo.GetSubRegion(ctx, f.SubRegionID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if err != nil || sub.RegionID != reg.ID {
			errs = append(errs, FieldError{Field: "subregion", Err: ErrInvalidRegion})
		}
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	a := &models.Address{
		UserID:      &userID,
		Name:        f.Name,
		Address:     f.Address,
		RegionID:    f.RegionID,
		SubRegionID: f.SubRegionID,
		Zip:         f.Zip,
	}
	if err := s.Repo.CreateAddress(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Remove detaches the address from the user. Orders shipped there keep it.
func (s *AddressService) Remove(ctx context.Context, userID, id uint) error {
	return notFound(s.Repo.UnlinkAddress(ctx, userID, id), "address")
}

func (s *AddressService) Regions(ctx context.Context) ([]models.Region, error) {
	return s.Repo.ListRegions(ctx)
}

func (s *AddressService) SubRegions(ctx context.Context, regionID uint) ([]models.SubRegion, error) {
	return s.Repo.ListSubRegions(ctx, regionID)
}

func (s *AddressService) CreateRegion(ctx context.Context, name string) (*models.Region, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ValidationErrors{{Field: "name", Err: ErrRequired}}
	}
	reg := &models.Region{Name: name}
	if err := s.Repo.CreateRegion(ctx, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

func (s *AddressService) CreateSubRegion(ctx context.Context, regionID uint, name string) (*models.SubRegion, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ValidationErrors{{Field: "name", Err: ErrRequired}}
	}
	if _, err := s.Repo.GetRegion(ctx, regionID); err != nil {
		return nil, notFound(err, "region")
	}
	sr := &models.SubRegion{RegionID: regionID, Name: name}
	if err := s.Repo.CreateSubRegion(ctx, sr); err != nil {
		return nil, err
	}
	return sr, nil
}
