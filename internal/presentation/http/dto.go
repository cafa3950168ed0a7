package httppresentation

import (
	"time"

	"github.com/PtahaWebDez/Flower-crm/internal/application/allocation"
	"github.com/PtahaWebDez/Flower-crm/internal/domain/inventory"
	"github.com/PtahaWebDez/Flower-crm/internal/domain/order"
)

type errorResponse struct {
	Error    string         `json:"error"`
	Code     string         `json:"code,omitempty"`
	Shortage *shortageDTO   `json:"shortage,omitempty"`
	Lines    []lineErrorDTO `json:"lines,omitempty"`
}

type shortageDTO struct {
	Component string `json:"component"`
	Required  int    `json:"required"`
	Available int    `json:"available"`
}

type lineErrorDTO struct {
	Line   int    `json:"line"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

func lineErrorsDTO(lines []inventory.LineError) []lineErrorDTO {
	if len(lines) == 0 {
		return nil
	}
	out := make([]lineErrorDTO, len(lines))
	for i, l := range lines {
		out[i] = lineErrorDTO{Line: l.Line, Text: l.Text, Reason: l.Reason}
	}
	return out
}

type shortfallDTO struct {
	Component string `json:"component"`
	Required  int    `json:"required"`
	Allocated int    `json:"allocated"`
}

type bouquetDTO struct {
	Name         string         `json:"name"`
	Composition  map[string]int `json:"composition"`
	Replacement  bool           `json:"replacement,omitempty"`
	Shortage     []shortfallDTO `json:"shortage,omitempty"`
	ShortageText string         `json:"shortage_text,omitempty"`
}

type orderDTO struct {
	ID          string         `json:"id"`
	Number      int            `json:"number"`
	Title       string         `json:"title"`
	Status      order.Status   `json:"status"`
	Composition map[string]int `json:"composition"`
	Bouquets    []bouquetDTO   `json:"bouquets"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func toOrderDTO(o *order.Order) orderDTO {
	bouquets := make([]bouquetDTO, len(o.Bouquets))
	for i, b := range o.Bouquets {
		var shortage []shortfallDTO
		for _, s := range b.Shortage {
			shortage = append(shortage, shortfallDTO{Component: s.Component, Required: s.Required, Allocated: s.Allocated})
		}
		bouquets[i] = bouquetDTO{
			Name:         b.Name,
			Composition:  b.Composition,
			Replacement:  b.Replacement,
			Shortage:     shortage,
			ShortageText: b.ShortageText(),
		}
	}
	return orderDTO{
		ID:          o.ID,
		Number:      o.Number,
		Title:       o.Title,
		Status:      o.Status,
		Composition: o.Composition,
		Bouquets:    bouquets,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

type stateResponse struct {
	Orders   []orderDTO     `json:"orders"`
	Stock    map[string]int `json:"stock"`
	Products []string       `json:"products"`
	Statuses []order.Status `json:"statuses"`
}

type itemDTO struct {
	Name        string          `json:"name"`
	Mode        allocation.Mode `json:"mode,omitempty"`
	Composition map[string]int  `json:"composition,omitempty"`
}

func (d itemDTO) batchItem() allocation.BatchItem {
	mode := d.Mode
	if mode == "" {
		mode = allocation.ModeStrict
	}
	var comp inventory.Composition
	if d.Composition != nil {
		comp = inventory.Composition(d.Composition)
	}
	return allocation.BatchItem{Name: d.Name, Mode: mode, Composition: comp}
}

type checkRequest struct {
	Product   string    `json:"product"`
	Tentative []itemDTO `json:"tentative"`
}

type checkResponse struct {
	Product    string                   `json:"product"`
	Status     allocation.VerdictStatus `json:"status"`
	Feasible   bool                     `json:"feasible"`
	Required   map[string]int           `json:"required,omitempty"`
	Shortages  []shortageDTO            `json:"shortages,omitempty"`
	Remaining  map[string]int           `json:"remaining,omitempty"`
	Obtainable map[string]int           `json:"obtainable,omitempty"`
}

func toCheckResponse(v allocation.Verdict) checkResponse {
	resp := checkResponse{
		Product:    v.Product,
		Status:     v.Status,
		Feasible:   v.Feasible(),
		Required:   v.Required,
		Remaining:  v.Remaining,
		Obtainable: v.Obtainable,
	}
	for _, s := range v.Shortages {
		resp.Shortages = append(resp.Shortages, shortageDTO{Component: s.Component, Required: s.Required, Available: s.Available})
	}
	return resp
}

type bookRequest struct {
	Product string `json:"product"`
}

type bookBatchRequest struct {
	Items []itemDTO `json:"items"`
}

type extraDTO struct {
	Component string `json:"component"`
	Quantity  int    `json:"quantity"`
}

type prepareReplacementRequest struct {
	Product string     `json:"product"`
	Extras  []extraDTO `json:"extras"`
}

type numberRequest struct {
	Number int `json:"number"`
}

type nameRequest struct {
	Bouquet int    `json:"bouquet"`
	Name    string `json:"name"`
}

type quantityRequest struct {
	Bouquet   int    `json:"bouquet"`
	Component string `json:"component"`
	Quantity  int    `json:"quantity"`
}

type compositionRequest struct {
	Bouquet int    `json:"bouquet"`
	Text    string `json:"text"`
}

type compositionResponse struct {
	Order   orderDTO       `json:"order"`
	Skipped []lineErrorDTO `json:"skipped,omitempty"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type stockRequest struct {
	Quantity *int `json:"quantity"`
}

type stockResponse struct {
	Stock map[string]int `json:"stock"`
}
