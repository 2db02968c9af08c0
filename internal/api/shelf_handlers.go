package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readupapp/readup-server/internal/domain"
	"github.com/readupapp/readup-server/internal/service"
)

func (s *Server) registerShelfRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "addShelfEntry",
		Method:      http.MethodPost,
		Path:        "/shelves/{bookId}",
		Summary:     "Add to shelf",
		Description: "Puts a book on a shelf. New entries default to want; existing entries only move when a status is given",
		Tags:        []string{"Shelves"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddShelfEntry)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateShelfEntry",
		Method:      http.MethodPut,
		Path:        "/shelves/{bookId}",
		Summary:     "Update shelf entry",
		Description: "Partially updates a shelf entry. Omitted fields are unchanged; null clears a field",
		Tags:        []string{"Shelves"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateShelfEntry)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteShelfEntry",
		Method:      http.MethodDelete,
		Path:        "/shelves/{bookId}",
		Summary:     "Remove from shelf",
		Description: "Removes a book from the user's shelves. Reading history is kept",
		Tags:        []string{"Shelves"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteShelfEntry)

	huma.Register(s.api, huma.Operation{
		OperationID: "listShelf",
		Method:      http.MethodGet,
		Path:        "/shelves/{status}",
		Summary:     "List shelf",
		Description: "Returns the user's entries with the given status, with book details",
		Tags:        []string{"Shelves"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListShelf)

	huma.Register(s.api, huma.Operation{
		OperationID: "addNote",
		Method:      http.MethodPost,
		Path:        "/shelves/{bookId}/notes",
		Summary:     "Add note",
		Description: "Attaches a highlight or annotation to a shelf entry",
		Tags:        []string{"Shelves"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddNote)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteNote",
		Method:      http.MethodDelete,
		Path:        "/shelves/{bookId}/notes/{noteId}",
		Summary:     "Delete note",
		Description: "Removes a note from a shelf entry",
		Tags:        []string{"Shelves"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteNote)
}

// === DTOs ===

// AddShelfEntryRequest is the request body for adding a book to a shelf.
type AddShelfEntryRequest struct {
	Status string `json:"status,omitempty" doc:"want, reading, finished or dropped"`
}

// AddShelfEntryInput wraps the add request for Huma.
type AddShelfEntryInput struct {
	Authorization string                `header:"Authorization"`
	BookID        string                `path:"bookId" doc:"Book ID"`
	Body          *AddShelfEntryRequest `required:"false"`
}

// UpdateShelfEntryRequest is a partial update. Every field may be omitted or null.
type UpdateShelfEntryRequest struct {
	Status           OmittableNullable[string]   `json:"status,omitempty" doc:"New status"`
	ProgressPercent  OmittableNullable[float64]  `json:"progressPercent,omitempty" doc:"Progress, 0-100"`
	LastLocation     OmittableNullable[string]   `json:"lastLocation,omitempty" doc:"Opaque reader position"`
	TargetFinishDate OmittableNullable[FlexTime] `json:"targetFinishDate,omitempty" doc:"Target finish date; null clears"`
	FinishDate       OmittableNullable[FlexTime] `json:"finishDate,omitempty" doc:"Finish date; null clears"`
	Rating           OmittableNullable[int]      `json:"rating,omitempty" doc:"Rating 1-5; null clears"`
	Review           OmittableNullable[string]   `json:"review,omitempty" doc:"Review text; null clears"`
}

// UpdateShelfEntryInput wraps the update request for Huma.
type UpdateShelfEntryInput struct {
	Authorization string `header:"Authorization"`
	BookID        string `path:"bookId" doc:"Book ID"`
	Body          UpdateShelfEntryRequest
}

// ShelfEntryInput identifies one shelf entry.
type ShelfEntryInput struct {
	Authorization string `header:"Authorization"`
	BookID        string `path:"bookId" doc:"Book ID"`
}

// BookStateOutput wraps a shelf entry for Huma.
type BookStateOutput struct {
	Body *domain.BookState
}

// ListShelfInput contains parameters for listing a shelf.
type ListShelfInput struct {
	Authorization string `header:"Authorization"`
	Status        string `path:"status" doc:"want, reading, finished or dropped"`
}

// ListShelfOutput wraps a shelf listing for Huma.
type ListShelfOutput struct {
	Body []*domain.BookState
}

// AddNoteRequest is the request body for adding a note.
type AddNoteRequest struct {
	Position string `json:"position" doc:"Opaque reader position of the highlight"`
	Text     string `json:"text" doc:"Highlighted text"`
	Comment  string `json:"comment,omitempty" doc:"Reader comment"`
}

// AddNoteInput wraps the add note request for Huma.
type AddNoteInput struct {
	Authorization string `header:"Authorization"`
	BookID        string `path:"bookId" doc:"Book ID"`
	Body          AddNoteRequest
}

// NoteOutput wraps a note for Huma.
type NoteOutput struct {
	Body *domain.Note
}

// DeleteNoteInput identifies one note.
type DeleteNoteInput struct {
	Authorization string `header:"Authorization"`
	BookID        string `path:"bookId" doc:"Book ID"`
	NoteID        string `path:"noteId" doc:"Note ID"`
}

// === Handlers ===

func (s *Server) handleAddShelfEntry(ctx context.Context, input *AddShelfEntryInput) (*BookStateOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	var status domain.ShelfStatus
	if input.Body != nil {
		status = domain.ShelfStatus(input.Body.Status)
	}

	state, err := s.services.Tracker.UpsertShelfEntry(ctx, userID, input.BookID, status)
	if err != nil {
		return nil, err
	}

	return &BookStateOutput{Body: state}, nil
}

func (s *Server) handleUpdateShelfEntry(ctx context.Context, input *UpdateShelfEntryInput) (*BookStateOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	b := input.Body
	patch := domain.StatePatch{
		Status:           statusOptional(b.Status),
		ProgressPercent:  optional(b.ProgressPercent),
		LastLocation:     optional(b.LastLocation),
		TargetFinishDate: timeOptional(b.TargetFinishDate, s.loc),
		FinishDate:       timeOptional(b.FinishDate, s.loc),
		Rating:           optional(b.Rating),
		Review:           optional(b.Review),
	}

	state, err := s.services.Tracker.UpdateShelfEntry(ctx, userID, input.BookID, patch)
	if err != nil {
		return nil, err
	}

	return &BookStateOutput{Body: state}, nil
}

func (s *Server) handleDeleteShelfEntry(ctx context.Context, input *ShelfEntryInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Tracker.DeleteShelfEntry(ctx, userID, input.BookID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Removed from shelf"}}, nil
}

func (s *Server) handleListShelf(ctx context.Context, input *ListShelfInput) (*ListShelfOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	status, err := parseStatus(input.Status)
	if err != nil {
		return nil, err
	}

	states, err := s.services.Tracker.ListShelf(ctx, userID, status)
	if err != nil {
		return nil, err
	}

	return &ListShelfOutput{Body: states}, nil
}

func (s *Server) handleAddNote(ctx context.Context, input *AddNoteInput) (*NoteOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	note, err := s.services.Tracker.AddNote(ctx, userID, input.BookID, service.NoteRequest{
		Position: input.Body.Position,
		Text:     input.Body.Text,
		Comment:  input.Body.Comment,
	})
	if err != nil {
		return nil, err
	}

	return &NoteOutput{Body: note}, nil
}

func (s *Server) handleDeleteNote(ctx context.Context, input *DeleteNoteInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Tracker.DeleteNote(ctx, userID, input.BookID, input.NoteID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Note deleted"}}, nil
}

func statusOptional(o OmittableNullable[string]) domain.Optional[domain.ShelfStatus] {
	v := optional(o)
	return domain.Optional[domain.ShelfStatus]{Set: v.Set, Null: v.Null, Value: domain.ShelfStatus(v.Value)}
}

// timeOptional resolves calendar dates to midnight in loc.
func timeOptional(o OmittableNullable[FlexTime], loc *time.Location) domain.Optional[time.Time] {
	v := optional(o)
	return domain.Optional[time.Time]{Set: v.Set, Null: v.Null, Value: v.Value.In(loc)}
}
