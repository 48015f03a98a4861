package usecase

import (
	"context"
	"fmt"

	"github.com/vadimbarashkov/shortlink/internal/entity"
)

// FindByShortCode returns the active URL for shortCode without side effects.
// Retired and unknown codes both yield entity.ErrURLNotFound.
func (uc *URLUseCase) FindByShortCode(ctx context.Context, shortCode string) (*entity.URL, error) {
	const op = "usecase.URLUseCase.FindByShortCode"

	url, err := uc.urlRepo.RetrieveByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to find url: %w", op, err)
	}

	return url, nil
}

// ResolveShortCode records a click on the active URL for shortCode and returns it.
// The lookup and the increment are a single store operation.
func (uc *URLUseCase) ResolveShortCode(ctx context.Context, shortCode string) (*entity.URL, error) {
	const op = "usecase.URLUseCase.ResolveShortCode"

	url, err := uc.urlRepo.RetrieveAndIncrementClicks(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	return url, nil
}
