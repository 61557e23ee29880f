package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	analyticsdomain "pricetrack/internal/analytics/domain"
	catalogapp "pricetrack/internal/catalog/application"
	catalogdomain "pricetrack/internal/catalog/domain"
	exportdomain "pricetrack/internal/export/domain"
	matchingdomain "pricetrack/internal/matching/domain"
)

// FinalProductAdmin administration des produits finaux
type FinalProductAdmin interface {
	ListFinalProducts(ctx context.Context, page, size int) (*catalogapp.FinalProductPage, error)
	GetFinalProduct(ctx context.Context, id catalogdomain.FinalProductID) (*catalogdomain.FinalProduct, error)
	DeleteFinalProduct(ctx context.Context, id catalogdomain.FinalProductID) error
}

// Matcher réconciliation des associations produit final / annonces
type Matcher interface {
	ReplaceMatches(ctx context.Context, fp catalogdomain.FinalProductID, ids []catalogdomain.ListingID) (matchingdomain.ReconcileResult, error)
	AddMatches(ctx context.Context, fp catalogdomain.FinalProductID, ids []catalogdomain.ListingID) (int, error)
	RemoveMatch(ctx context.Context, fp catalogdomain.FinalProductID, listing catalogdomain.ListingID) error
	GetMatchedListingIDs(ctx context.Context, fp catalogdomain.FinalProductID) ([]catalogdomain.ListingID, error)
}

// CandidateSelector sélection paginée des annonces candidates
type CandidateSelector interface {
	SelectCandidates(ctx context.Context, fp catalogdomain.FinalProductID, filter matchingdomain.CandidateFilter, page, pageSize int) (*matchingdomain.CandidatePage, error)
}

// Reports rapports d'analyse des prix
type Reports interface {
	LowestMoment(ctx context.Context, fp catalogdomain.FinalProductID) ([]analyticsdomain.LowestMoment, error)
	DetectCampaigns(ctx context.Context, fp catalogdomain.FinalProductID, params analyticsdomain.CampaignParams) (*analyticsdomain.CampaignReport, error)
	PlatformAverages(ctx context.Context, fp catalogdomain.FinalProductID) ([]analyticsdomain.PlatformAverage, error)
	TagAverages(ctx context.Context, fp catalogdomain.FinalProductID) ([]analyticsdomain.TagAverage, error)
	LowestPriceList(ctx context.Context, fp catalogdomain.FinalProductID) ([]analyticsdomain.LowestPriceEntry, error)
	PriceHistory(ctx context.Context, listingID catalogdomain.ListingID) (*analyticsdomain.ListingPriceHistory, error)
	StockStatus(ctx context.Context, listingID catalogdomain.ListingID) (analyticsdomain.StockStatus, error)
	TagPrices(ctx context.Context, tag catalogdomain.TagID) (*analyticsdomain.TagPriceReport, error)
	Overview(ctx context.Context, fp catalogdomain.FinalProductID, params analyticsdomain.CampaignParams) (*analyticsdomain.Overview, error)
}

// Exporter exports CSV des rapports
type Exporter interface {
	LowestMomentsCSV(ctx context.Context, ids []catalogdomain.FinalProductID) ([]byte, *exportdomain.ExportJob, error)
	CampaignsCSV(ctx context.Context, fp catalogdomain.FinalProductID, params analyticsdomain.CampaignParams) ([]byte, *exportdomain.ExportJob, error)
}

// Handlers contient tous les handlers de l'API V1
type Handlers struct {
	products   FinalProductAdmin
	matches    Matcher
	candidates CandidateSelector
	reports    Reports
	exports    Exporter
	now        func() time.Time
}

// NewHandlers crée une nouvelle instance des handlers V1
func NewHandlers(
	products FinalProductAdmin,
	matches Matcher,
	candidates CandidateSelector,
	reports Reports,
	exports Exporter,
) *Handlers {
	return &Handlers{
		products:   products,
		matches:    matches,
		candidates: candidates,
		reports:    reports,
		exports:    exports,
		now:        time.Now,
	}
}

// Health handler pour GET /api/health
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": h.now().UTC()})
}

// ListFinalProducts handler pour GET /api/v1/final-products
func (h *Handlers) ListFinalProducts(c *gin.Context) {
	page, limit, ok := pagination(c)
	if !ok {
		return
	}

	res, err := h.products.ListFinalProducts(c.Request.Context(), page, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	items := make([]FinalProductDTO, 0, len(res.Items))
	for _, s := range res.Items {
		items = append(items, toFinalProductDTO(s))
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "pagination": newPageMeta(res.Page, res.Total)})
}

// GetFinalProduct handler pour GET /api/v1/final-products/:id
func (h *Handlers) GetFinalProduct(c *gin.Context) {
	fp, ok := finalProductParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	product, err := h.products.GetFinalProduct(ctx, fp)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	matched, err := h.matches.GetMatchedListingIDs(ctx, fp)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	dto := toFinalProductDTO(catalogdomain.FinalProductSummary{Product: product, MatchedCount: len(matched)})
	c.JSON(http.StatusOK, dto)
}

// DeleteFinalProduct handler pour DELETE /api/v1/final-products/:id
func (h *Handlers) DeleteFinalProduct(c *gin.Context) {
	fp, ok := finalProductParam(c)
	if !ok {
		return
	}
	if err := h.products.DeleteFinalProduct(c.Request.Context(), fp); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetMatches handler pour GET /api/v1/final-products/:id/matches
func (h *Handlers) GetMatches(c *gin.Context) {
	fp, ok := finalProductParam(c)
	if !ok {
		return
	}
	ids, err := h.matches.GetMatchedListingIDs(c.Request.Context(), fp)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"final_product_id": fp, "listing_ids": ids})
}

// PutMatches handler pour PUT /api/v1/final-products/:id/matches
// replace_all=true remplace l'ensemble; sinon les annonces sont seulement ajoutées
func (h *Handlers) PutMatches(c *gin.Context) {
	fp, ok := finalProductParam(c)
	if !ok {
		return
	}
	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "listing_ids must be an array of listing ids")
		return
	}

	if !req.ReplaceAll {
		h.addMatches(c, fp, req)
		return
	}

	res, err := h.matches.ReplaceMatches(c.Request.Context(), fp, req.listingIDs())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// PostMatches handler pour POST /api/v1/final-products/:id/matches
func (h *Handlers) PostMatches(c *gin.Context) {
	fp, ok := finalProductParam(c)
	if !ok {
		return
	}
	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "listing_ids must be an array of listing ids")
		return
	}
	h.addMatches(c, fp, req)
}

func (h *Handlers) addMatches(c *gin.Context, fp catalogdomain.FinalProductID, req MatchRequest) {
	added, err := h.matches.AddMatches(c.Request.Context(), fp, req.listingIDs())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, matchingdomain.ReconcileResult{Added: added})
}

// DeleteMatch handler pour DELETE /api/v1/final-products/:id/matches/:listingId
func (h *Handlers) DeleteMatch(c *gin.Context) {
	fp, ok := finalProductParam(c)
	if !ok {
		return
	}
	listing, ok := parseID(c, "listingId")
	if !ok {
		return
	}
	if err := h.matches.RemoveMatch(c.Request.Context(), fp, catalogdomain.ListingID(listing)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetCandidates handler pour GET /api/v1/final-products/:id/candidates
func (h *Handlers) GetCandidates(c *gin.Context) {
	fp, ok := finalProductParam(c)
	if !ok {
		return
	}
	page, limit, ok := pagination(c)
	if !ok {
		return
	}
	filter := matchingdomain.CandidateFilter{
		Platform:    c.Query("platform"),
		ListingType: c.Query("listing_type"),
		SearchText:  c.Query("search"),
	}

	res, err := h.candidates.SelectCandidates(c.Request.Context(), fp, filter, page, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	items := make([]CandidateDTO, 0, len(res.Items))
	for _, cand := range res.Items {
		items = append(items, toCandidateDTO(cand))
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "pagination": newPageMeta(res.Page, res.Total)})
}

// campaignParams lit min_discount et days_back
func campaignParams(c *gin.Context) (analyticsdomain.CampaignParams, bool) {
	params := analyticsdomain.DefaultCampaignParams()
	var ok bool
	if params.MinDiscountPercent, ok = queryFloat(c, "min_discount", params.MinDiscountPercent); !ok {
		return params, false
	}
	if params.LookbackDays, ok = queryInt(c, "days_back", params.LookbackDays); !ok {
		return params, false
	}
	if err := params.Validate(); err != nil {
		respondServiceError(c, err)
		return params, false
	}
	return params, true
}

// LowestMoment handler pour GET /api/v1/reports/lowest-moment/:id
func (h *Handlers) LowestMoment(c *gin.Context) {
	fp, ok := finalProductParam(c)
	if !ok {
		return
	}
	rows, err := h.reports.LowestMoment(c.Request.Context(), fp)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"final_product_id": fp, "items": rows})
}

// Campaigns handler pour GET /api/v1/reports/campaigns/:id
func (h *Handlers) Campaigns(c *gin.Context) {
	fp, ok := finalProductParam(c)
	if !ok {
		return
	}
	params, ok := campaignParams(c)
	if !ok {
		return
	}
	report, err := h.reports.DetectCampaigns(c.Request.Context(), fp, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"final_product_id": fp,
		"min_discount":     params.MinDiscountPercent,
		"days_back":        params.LookbackDays,
		"events":           report.Events,
		"stats":            report.Stats,
	})
}

// PlatformAverages handler pour GET /api/v1/reports/platform-averages/:id
func (h *Handlers) PlatformAverages(c *gin.Context) {
	fp, ok := finalProductParam(c)
	if !ok {
		return
	}
	rows, err := h.reports.PlatformAverages(c.Request.Context(), fp)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"final_product_id": fp, "items": rows})
}

// TagAverages handler pour GET /api/v1/reports/tag-averages/:id
func (h *Handlers) TagAverages(c *gin.Context) {
	fp, ok := finalProductParam(c)
	if !ok {
		return
	}
	rows, err := h.reports.TagAverages(c.Request.Context(), fp)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"final_product_id": fp, "items": rows})
}

// LowestPriceList handler pour GET /api/v1/reports/lowest-price/:id
func (h *Handlers) LowestPriceList(c *gin.Context) {
	fp, ok := finalProductParam(c)
	if !ok {
		return
	}
	rows, err := h.reports.LowestPriceList(c.Request.Context(), fp)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"final_product_id": fp, "items": rows})
}

// Overview handler pour GET /api/v1/reports/overview/:id
func (h *Handlers) Overview(c *gin.Context) {
	fp, ok := finalProductParam(c)
	if !ok {
		return
	}
	params, ok := campaignParams(c)
	if !ok {
		return
	}
	overview, err := h.reports.Overview(c.Request.Context(), fp, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// PriceHistory handler pour GET /api/v1/reports/price-history/:listingId
func (h *Handlers) PriceHistory(c *gin.Context) {
	listing, ok := parseID(c, "listingId")
	if !ok {
		return
	}
	history, err := h.reports.PriceHistory(c.Request.Context(), catalogdomain.ListingID(listing))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// StockStatus handler pour GET /api/v1/reports/stock-status/:listingId
func (h *Handlers) StockStatus(c *gin.Context) {
	listing, ok := parseID(c, "listingId")
	if !ok {
		return
	}
	status, err := h.reports.StockStatus(c.Request.Context(), catalogdomain.ListingID(listing))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// TagPrices handler pour GET /api/v1/reports/tag-price/:tagId
func (h *Handlers) TagPrices(c *gin.Context) {
	tag, ok := parseID(c, "tagId")
	if !ok {
		return
	}
	report, err := h.reports.TagPrices(c.Request.Context(), catalogdomain.TagID(tag))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ExportLowestMoments handler pour GET /api/v1/exports/lowest-moment?ids=1,2,3
func (h *Handlers) ExportLowestMoments(c *gin.Context) {
	ids, err := parseIDList(c.Query("ids"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	data, job, err := h.exports.LowestMomentsCSV(c.Request.Context(), ids)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	sendCSV(c, job.Filename(), data)
}

// ExportCampaigns handler pour GET /api/v1/exports/campaigns/:id
func (h *Handlers) ExportCampaigns(c *gin.Context) {
	fp, ok := finalProductParam(c)
	if !ok {
		return
	}
	params, ok := campaignParams(c)
	if !ok {
		return
	}
	data, job, err := h.exports.CampaignsCSV(c.Request.Context(), fp, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	sendCSV(c, job.Filename(), data)
}
