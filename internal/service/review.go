package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/stationery_shop/internal/models"
	"github.com/Skotchmaster/stationery_shop/internal/repo"
	"github.com/Skotchmaster/stationery_shop/internal/util"
)

const (
	maxSubjectLen = 50
	maxCommentLen = 400
)

type ReviewService struct {
	Repo *repo.GormRepo
}

type ReviewForm struct {
	Subject string `json:"subject" form:"subject"`
	Comment string `json:"comment" form:"comment"`
	Rating  int    `json:"rating" form:"rating"`
}

type ReviewStats struct {
	Average decimal.Decimal
	// Stars holds the counts for 5, 4, 3, 2 and 1 stars, in that order.
	Stars [5]int64
	Count int64
}

type ReviewPage struct {
	Items []models.Review
	Meta  util.Meta
}

func ValidateReview(f ReviewForm) error {
	var errs ValidationErrors
	if f.Rating < 1 || f.Rating > 5 {
		errs = append(errs, FieldError{Field: "rating", Err: ErrInvalidRating})
	}
	if utf8.RuneCountInString(f.Subject) > maxSubjectLen {
		errs = append(errs, FieldError{Field: "subject", Err: ErrTooLong})
	}
	if utf8.RuneCountInString(f.Comment) > maxCommentLen {
		errs = append(errs, FieldError{Field: "comment", Err: ErrTooLong})
	}
	return errs.OrNil()
}

// Submit creates or overwrites the user's review of the product.
func (s *ReviewService) Submit(ctx context.Context, productID, userID uint, f ReviewForm) (*models.Review, error) {
	f.Subject = strings.TrimSpace(f.Subject)
	f.Comment = strings.TrimSpace(f.Comment)
	if err := ValidateReview(f); err != nil {
		return nil, err
	}
	if _, err := s.Repo.ProductByID(ctx, productID); err != nil {
		return nil, notFound(err, "product")
	}

	rv := &models.Review{
		ProductID: productID,
		UserID:    userID,
		Subject:   f.Subject,
		Comment:   f.Comment,
		Rating:    f.Rating,
	}
	if err := s.Repo.UpsertReview(ctx, rv); err != nil {
		return nil, err
	}
	return s.Repo.UserReview(ctx, productID, userID)
}

func (s *ReviewService) Stats(ctx context.Context, productID uint) (*ReviewStats, error) {
	rows, err := s.Repo.RatingCounts(ctx, productID)
	if err != nil {
		return nil, err
	}
	st := &ReviewStats{Average: decimal.Zero}
	var sum int64
	for _, r := range rows {
		if r.Rating < 1 || r.Rating > 5 {
			continue
		}
		st.Stars[5-r.Rating] = r.Count
		st.Count += r.Count
		sum += int64(r.Rating) * r.Count
	}
	if st.Count > 0 {
		st.Average = decimal.NewFromInt(sum).Div(decimal.NewFromInt(st.Count)).Round(1)
	}
	return st, nil
}

func (s *ReviewService) List(ctx context.Context, productID uint, page int) (*ReviewPage, error) {
	offset, limit := util.Calculate(page, util.ReviewPageSize)
	total, items, err := s.Repo.ListReviews(ctx, productID, offset, limit)
	if err != nil {
		return nil, err
	}
	return &ReviewPage{Items: items, Meta: util.NewMeta(page, util.ReviewPageSize, total)}, nil
}
