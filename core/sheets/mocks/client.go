package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// Client is a mock implementation of sheets.Client
type Client struct {
	mock.Mock
}

func (m *Client) Get(ctx context.Context, rng string) ([][]string, error) {
	args := m.Called(ctx, rng)
	if rows, ok := args.Get(0).([][]string); ok {
		return rows, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) Append(ctx context.Context, rng string, rows [][]string) error {
	args := m.Called(ctx, rng, rows)
	return args.Error(0)
}

func (m *Client) Update(ctx context.Context, rng string, rows [][]string) error {
	args := m.Called(ctx, rng, rows)
	return args.Error(0)
}

func (m *Client) Clear(ctx context.Context, rng string) error {
	args := m.Called(ctx, rng)
	return args.Error(0)
}
