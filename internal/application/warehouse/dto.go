package warehouse

import (
	"time"

	"github.com/google/uuid"
	"github.com/plant/backend/internal/domain/warehouse"
)

const dateLayout = "2006-01-02"

// CreateLotRequest carries an incoming lot to be auto-split across bins.
type CreateLotRequest struct {
	ProductName string
	ProductCode string
	Quantity    int
	Location    string // empty means warehouse.DefaultStartLocation
	InDate      time.Time
	Note        string
	Category    string
	ProductType string
	Limit       int // 0 means warehouse.DefaultBinCapacity
}

// CreateLotResult lists the bins the lot was placed into, in placement order.
type CreateLotResult struct {
	CreatedIDs []uuid.UUID `json:"created_ids"`
	Count      int         `json:"count"`
}

// BinResponse is the externally visible snapshot of one bin.
type BinResponse struct {
	ID          uuid.UUID `json:"id"`
	ProductName string    `json:"product_name"`
	ProductCode string    `json:"product_code"`
	Quantity    int       `json:"quantity"`
	Location    string    `json:"location"`
	InDate      string    `json:"in_date"`
	OutDate     *string   `json:"out_date"`
	Note        string    `json:"note"`
	Category    string    `json:"category"`
	ProductType string    `json:"product_type"`
	Status      string    `json:"status"`
	Limit       int       `json:"limit"`
}

// ToBinResponse converts a domain bin to its response shape.
func ToBinResponse(b *warehouse.InventoryBin) BinResponse {
	resp := BinResponse{
		ID:          b.ID,
		ProductName: b.ProductName,
		ProductCode: b.ProductCode,
		Quantity:    b.Quantity,
		Location:    b.Location,
		InDate:      b.InDate.Format(dateLayout),
		Note:        b.Note,
		Category:    b.Category,
		ProductType: b.ProductType,
		Status:      string(b.Status),
		Limit:       b.Limit,
	}
	if b.OutDate != nil {
		out := b.OutDate.Format(dateLayout)
		resp.OutDate = &out
	}
	return resp
}

// ToBinResponses converts a slice of domain bins.
func ToBinResponses(bins []warehouse.InventoryBin) []BinResponse {
	out := make([]BinResponse, 0, len(bins))
	for i := range bins {
		out = append(out, ToBinResponse(&bins[i]))
	}
	return out
}

// ListQuery carries the bin-list filters. When From/To are absent and
// RegDays is set, the range is the last RegDays days ending today.
type ListQuery struct {
	Search      string
	ProductType string
	Category    string
	Status      string
	RegDays     *int
	From        *time.Time
	To          *time.Time
	Page        int
	PageSize    int
}

// Filter resolves the query into the repository filter, converting the
// relative reg-days window into an absolute range when needed.
func (q ListQuery) Filter(now time.Time) warehouse.ListFilter {
	f := warehouse.ListFilter{
		Search:      q.Search,
		ProductType: q.ProductType,
		Category:    q.Category,
		Status:      q.Status,
		From:        q.From,
		To:          q.To,
	}
	if f.From == nil && f.To == nil && q.RegDays != nil {
		to := now
		from := now.AddDate(0, 0, -*q.RegDays)
		f.From = &from
		f.To = &to
	}
	return f
}

// LimitEntry is one row of a batch limit update.
type LimitEntry struct {
	ID    string `json:"id"`
	Limit int    `json:"limit"`
}
