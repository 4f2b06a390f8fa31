package handlers

import (
	"cmp"
	"log/slog"
	"net/http"
	"slices"

	"github.com/eshaffer321/contactbook/internal/adapters/vcard"
	"github.com/eshaffer321/contactbook/internal/api/dto"
	"github.com/eshaffer321/contactbook/internal/application/service"
	"github.com/eshaffer321/contactbook/internal/infrastructure/storage"
)

// ContactsHandler handles contact CRUD requests.
type ContactsHandler struct {
	*Base
}

// NewContactsHandler creates a new contacts handler.
func NewContactsHandler(svc *service.ContactService, logger *slog.Logger) *ContactsHandler {
	return &ContactsHandler{
		Base: NewBase(svc, logger),
	}
}

// List handles GET /api/contacts - returns a page of contacts, optionally filtered by q.
func (h *ContactsHandler) List(w http.ResponseWriter, r *http.Request) {
	defaults := dto.DefaultContactListParams()
	filters := storage.ContactFilters{
		Query: r.URL.Query().Get("q"),
		Skip:  ParseIntParam(r, "skip", defaults.Skip),
		Limit: ParseIntParam(r, "limit", defaults.Limit),
	}

	result, err := h.svc.ListContacts(r.Context(), filters)
	if err != nil {
		h.WriteServiceError(w, r, err)
		return
	}

	response := dto.ContactListResponse{
		Contacts:   make([]dto.ContactResponse, 0, len(result.Contacts)),
		TotalCount: result.TotalCount,
		Skip:       result.Skip,
		Limit:      result.Limit,
	}
	for _, c := range result.Contacts {
		response.Contacts = append(response.Contacts, dto.NewContactResponse(c))
	}

	h.WriteJSON(w, http.StatusOK, response)
}

// Get handles GET /api/contacts/{id}.
func (h *ContactsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ParseIDParam(w, r)
	if !ok {
		return
	}

	c, err := h.svc.GetContact(r.Context(), id)
	if err != nil {
		h.WriteServiceError(w, r, err)
		return
	}
	if c == nil {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("contact"))
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.NewContactResponse(c))
}

// Create handles POST /api/contacts.
func (h *ContactsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.ContactRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	created, err := h.svc.CreateContact(r.Context(), req.ToContact())
	if err != nil {
		h.WriteServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, dto.NewContactResponse(created))
}

// Update handles PATCH and PUT /api/contacts/{id} - only fields present in the body change.
func (h *ContactsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ParseIDParam(w, r)
	if !ok {
		return
	}

	var req dto.ContactPatchRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	updated, err := h.svc.UpdateContact(r.Context(), id, req.ToPatch())
	if err != nil {
		h.WriteServiceError(w, r, err)
		return
	}
	if updated == nil {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("contact"))
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.NewContactResponse(updated))
}

// Delete handles DELETE /api/contacts/{id} - returns the removed contact.
func (h *ContactsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ParseIDParam(w, r)
	if !ok {
		return
	}

	deleted, err := h.svc.DeleteContact(r.Context(), id)
	if err != nil {
		h.WriteServiceError(w, r, err)
		return
	}
	if deleted == nil {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("contact"))
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.NewContactResponse(deleted))
}

// Import handles POST /api/contacts/import - body is one or more vCards.
func (h *ContactsHandler) Import(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)

	decoded, cardErrs, err := vcard.DecodeContacts(body)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	result, err := h.svc.ImportContacts(r.Context(), decoded)
	if err != nil {
		h.WriteServiceError(w, r, err)
		return
	}

	response := dto.ImportResponse{
		Created: make([]dto.ContactResponse, 0, len(result.Created)),
		Skipped: make([]dto.ImportSkipResponse, 0, len(result.Skipped)+len(cardErrs)),
	}
	for _, c := range result.Created {
		response.Created = append(response.Created, dto.NewContactResponse(c))
	}
	for _, ce := range cardErrs {
		response.Skipped = append(response.Skipped, dto.ImportSkipResponse{
			Index:  ce.Index,
			Name:   ce.Name,
			Reason: ce.Err.Error(),
		})
	}
	cardIndex := decodedCardIndexes(len(decoded), cardErrs)
	for _, s := range result.Skipped {
		response.Skipped = append(response.Skipped, dto.ImportSkipResponse{
			Index:  cardIndex[s.Index],
			Name:   s.Name,
			Reason: s.Reason,
		})
	}
	slices.SortFunc(response.Skipped, func(a, b dto.ImportSkipResponse) int {
		return cmp.Compare(a.Index, b.Index)
	})

	h.WriteJSON(w, http.StatusOK, response)
}

// decodedCardIndexes maps positions in the decoded slice back to positions in the vCard stream.
func decodedCardIndexes(n int, cardErrs []*vcard.CardError) []int {
	failed := make(map[int]bool, len(cardErrs))
	for _, ce := range cardErrs {
		failed[ce.Index] = true
	}
	out := make([]int, 0, n)
	for i := 0; len(out) < n; i++ {
		if !failed[i] {
			out = append(out, i)
		}
	}
	return out
}

// Export handles GET /api/contacts/export.vcf - all contacts as vCard 4.0.
func (h *ContactsHandler) Export(w http.ResponseWriter, r *http.Request) {
	all, err := h.svc.AllContacts(r.Context())
	if err != nil {
		h.WriteServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/vcard; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="contacts.vcf"`)
	if err := vcard.EncodeContacts(w, all); err != nil {
		h.logger.Error("vcard export failed", slog.Any("error", err))
	}
}
