package sqlite

import (
	"context"
	"database/sql"

	"github.com/readupapp/readup-server/internal/domain"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `id, title, author, cover_url, owner_id, is_private, created_at, updated_at`

func scanBook(row scanner) (*domain.Book, error) {
	var (
		b                    domain.Book
		ownerID              sql.NullString
		isPrivate            int
		createdAt, updatedAt string
	)

	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.CoverURL, &ownerID, &isPrivate, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	b.OwnerID = ownerID.String
	b.IsPrivate = isPrivate != 0

	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBook registers a book in the catalog.
// Returns store.ErrAlreadyExists if the ID is taken.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO books (id, title, author, cover_url, owner_id, is_private, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		book.ID,
		book.Title,
		book.Author,
		book.CoverURL,
		nullString(book.OwnerID),
		boolToInt(book.IsPrivate),
		formatTime(book.CreatedAt),
		formatTime(book.UpdatedAt),
	)
	return mapError(err)
}

// GetBook retrieves a book by ID.
// Returns store.ErrNotFound if the catalog does not know the book.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	b, err := scanBook(s.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = ?`, id))
	if err != nil {
		return nil, mapError(err)
	}
	return b, nil
}

// ListBooks returns the catalog ordered by title.
func (s *Store) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+bookColumns+` FROM books ORDER BY title COLLATE NOCASE`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, mapError(rows.Err())
}
