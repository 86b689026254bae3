package chi

import (
	"errors"
	"strconv"
	"time"

	"github.com/kailas-cloud/vecgate/internal/domain"
	"github.com/kailas-cloud/vecgate/internal/domain/search/request"
	"github.com/kailas-cloud/vecgate/internal/domain/search/result"
	domusage "github.com/kailas-cloud/vecgate/internal/domain/usage"
	"github.com/kailas-cloud/vecgate/internal/domain/vector"
)

type vectorItemDTO struct {
	ID        *string           `json:"id,omitempty"`
	Namespace string            `json:"namespace,omitempty"`
	Text      *string           `json:"text,omitempty"`
	Vector    []float32         `json:"vector,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type upsertRequest struct {
	Vectors []vectorItemDTO `json:"vectors"`
}

type upsertResponse struct {
	UpsertedCount int `json:"upserted_count"`
}

type searchRequest struct {
	Namespace       string    `json:"namespace,omitempty"`
	Text            *string   `json:"text,omitempty"`
	Vector          []float32 `json:"vector,omitempty"`
	TopK            *int      `json:"top_k,omitempty"`
	IncludeValues   *bool     `json:"include_values,omitempty"`
	IncludeMetadata *bool     `json:"include_metadata,omitempty"`
}

// matchDTO always carries values and metadata; omitted fields encode as null.
type matchDTO struct {
	ID       string            `json:"id"`
	Score    float64           `json:"score"`
	Values   []float32         `json:"values"`
	Metadata map[string]string `json:"metadata"`
}

type searchResponse struct {
	Matches []matchDTO `json:"matches"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type readinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type budgetDTO struct {
	TokensLimit     *int64 `json:"tokens_limit"`
	TokensRemaining *int64 `json:"tokens_remaining"`
	IsExhausted     bool   `json:"is_exhausted"`
	ResetsAt        string `json:"resets_at"`
}

type usageResponse struct {
	Period      string    `json:"period"`
	PeriodStart string    `json:"period_start"`
	PeriodEnd   string    `json:"period_end"`
	Provider    string    `json:"provider"`
	TokensUsed  int64     `json:"tokens_used"`
	Budget      budgetDTO `json:"budget"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func itemsFromRequest(in []vectorItemDTO) ([]vector.Item, error) {
	items := make([]vector.Item, 0, len(in))
	for i, dto := range in {
		src, err := vector.NewSource(dto.Text, dto.Vector)
		if err != nil {
			return nil, prefixIndex(i, err)
		}
		var id string
		if dto.ID != nil {
			id = *dto.ID
		}
		items = append(items, vector.NewItem(id, dto.Namespace, src, dto.Metadata))
	}
	return items, nil
}

// prefixIndex points a validation failure at the offending batch entry.
func prefixIndex(i int, err error) error {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	field := "vectors[" + strconv.Itoa(i) + "]"
	if ve.Field != "" {
		field += "." + ve.Field
	}
	return domain.NewValidationError(field, ve.Reason)
}

func searchRequestFromDTO(req searchRequest) (request.Request, error) {
	src, err := vector.NewSource(req.Text, req.Vector)
	if err != nil {
		return request.Request{}, err //nolint:wrapcheck // validation error is rendered as is
	}

	topK := request.DefaultTopK
	if req.TopK != nil {
		topK = *req.TopK
	}
	includeValues := request.DefaultIncludeValues
	if req.IncludeValues != nil {
		includeValues = *req.IncludeValues
	}
	includeMetadata := request.DefaultIncludeMetadata
	if req.IncludeMetadata != nil {
		includeMetadata = *req.IncludeMetadata
	}

	return request.New(req.Namespace, src, topK, includeValues, includeMetadata) //nolint:wrapcheck // same
}

func matchToDTO(m *result.Match) matchDTO {
	return matchDTO{
		ID:       m.ID(),
		Score:    m.Score(),
		Values:   m.Values(),
		Metadata: m.Metadata(),
	}
}

// usageToDTO renders limits as null when unlimited.
func usageToDTO(r *domusage.Report) usageResponse {
	b := r.Budget()
	dto := budgetDTO{
		IsExhausted: b.IsExhausted(),
		ResetsAt:    millisToRFC3339(b.ResetsAt()),
	}
	if !b.IsUnlimited() {
		limit, remaining := b.TokensLimit(), b.TokensRemaining()
		dto.TokensLimit = &limit
		dto.TokensRemaining = &remaining
	}
	return usageResponse{
		Period:      string(r.Period()),
		PeriodStart: millisToRFC3339(r.PeriodStart()),
		PeriodEnd:   millisToRFC3339(r.PeriodEnd()),
		Provider:    r.Provider(),
		TokensUsed:  r.TokensUsed(),
		Budget:      dto,
	}
}

func millisToRFC3339(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
