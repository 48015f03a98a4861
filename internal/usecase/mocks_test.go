package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

type mockURLRepository struct {
	mock.Mock
}

func (r *mockURLRepository) Save(ctx context.Context, shortCode, originalURL string) (*entity.URL, error) {
	args := r.Called(ctx, shortCode, originalURL)
	url, _ := args.Get(0).(*entity.URL)
	return url, args.Error(1)
}

func (r *mockURLRepository) ExistsByShortCode(ctx context.Context, shortCode string) (bool, error) {
	args := r.Called(ctx, shortCode)
	return args.Bool(0), args.Error(1)
}

func (r *mockURLRepository) RetrieveByShortCode(ctx context.Context, shortCode string) (*entity.URL, error) {
	args := r.Called(ctx, shortCode)
	url, _ := args.Get(0).(*entity.URL)
	return url, args.Error(1)
}

func (r *mockURLRepository) RetrieveAndIncrementClicks(ctx context.Context, shortCode string) (*entity.URL, error) {
	args := r.Called(ctx, shortCode)
	url, _ := args.Get(0).(*entity.URL)
	return url, args.Error(1)
}

// sequenceGenerator returns the given codes in order and then repeats the last one.
func sequenceGenerator(codes ...string) (CodeGenerator, *[]int) {
	var lengths []int
	i := 0

	return func(length int) (string, error) {
		lengths = append(lengths, length)
		code := codes[min(i, len(codes)-1)]
		i++
		return code, nil
	}, &lengths
}
