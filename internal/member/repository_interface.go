package member

import "context"

type Repository interface {
	GetByID(ctx context.Context, id int) (*Member, error)
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
}
