package application

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"testing"
	"time"

	analyticsapp "pricetrack/internal/analytics/application"
	analyticsdomain "pricetrack/internal/analytics/domain"
	catalogdomain "pricetrack/internal/catalog/domain"
	"pricetrack/internal/export/domain"
	shareddomain "pricetrack/internal/shared/domain"
	"pricetrack/internal/testhelpers"
)

// ========================================
// INTEGRATION TESTS - REAL DATABASE
// ========================================

func setupExportService(tc *testhelpers.TestContext) *ExportService {
	return NewExportService(
		analyticsapp.NewLowestMomentService(tc.FinalProductRepo, tc.PriceQueryRepo),
		analyticsapp.NewCampaignService(tc.FinalProductRepo, tc.PriceQueryRepo),
		tc.Log,
	)
}

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	return records
}

func TestLowestMomentsCSV_Integration(t *testing.T) {
	testhelpers.SkipIfNoDatabase(t)
	tc := testhelpers.SetupTestContext(t)
	defer tc.Cleanup()

	ctx := context.Background()
	svc := setupExportService(tc)
	now := time.Now()

	var ids []catalogdomain.FinalProductID
	for i := 0; i < 6; i++ {
		fp := tc.InsertFinalProduct(t, "Export", "")
		for j := 0; j < 2; j++ {
			l := tc.InsertListing(t, "amazon", "L", "Nike", "Sneakers", now)
			tc.InsertObservation(t, l, 100, 0, now.AddDate(0, 0, -3))
			tc.InsertObservation(t, l, 90, 0, now.AddDate(0, 0, -1))
			tc.InsertMatch(t, fp, l)
		}
		ids = append(ids, catalogdomain.FinalProductID(fp))
	}

	// Ordre inversé et doublon: le CSV suit l'ordre croissant des produits
	request := []catalogdomain.FinalProductID{ids[5], ids[0], ids[3], ids[0], ids[1], ids[2], ids[4]}
	data, job, err := svc.LowestMomentsCSV(ctx, request)
	if err != nil {
		t.Fatal(err)
	}
	if len(job.FinalProductIDs()) != 6 {
		t.Errorf("job ids = %v", job.FinalProductIDs())
	}

	records := readCSV(t, data)
	if len(records) != 1+12 {
		t.Fatalf("records = %d, want header + 12 rows", len(records))
	}
	if len(records[0]) != len(domain.LowestMomentCSVHeaders()) {
		t.Errorf("header = %v", records[0])
	}
	prev := int64(0)
	for _, r := range records[1:] {
		id, err := strconv.ParseInt(r[0], 10, 64)
		if err != nil || id < prev {
			t.Fatalf("rows not ordered by final product: %v after %d", r[0], prev)
		}
		prev = id
	}

	single, _, err := svc.LowestMomentCSV(ctx, ids[0])
	if err != nil {
		t.Fatal(err)
	}
	if n := len(readCSV(t, single)); n != 3 {
		t.Errorf("single product export rows = %d, want 3", n)
	}

	if _, _, err := svc.LowestMomentsCSV(ctx, []catalogdomain.FinalProductID{ids[0], 999999}); !shareddomain.IsKind(err, shareddomain.KindInvalidReference) {
		t.Errorf("unknown product in batch: got %v", err)
	}
}

func TestCampaignsCSV_Integration(t *testing.T) {
	testhelpers.SkipIfNoDatabase(t)
	tc := testhelpers.SetupTestContext(t)
	defer tc.Cleanup()

	ctx := context.Background()
	svc := setupExportService(tc)
	now := time.Now()

	fp := tc.InsertFinalProduct(t, "Campaign export", "")
	l := tc.InsertListing(t, "n11", "L", "Nike", "Sneakers", now)
	tc.InsertObservation(t, l, 200, 100, now.AddDate(0, 0, -2))
	tc.InsertObservation(t, l, 200, 0, now.AddDate(0, 0, -1))
	tc.InsertMatch(t, fp, l)

	data, job, err := svc.CampaignsCSV(ctx, catalogdomain.FinalProductID(fp), analyticsdomain.DefaultCampaignParams())
	if err != nil {
		t.Fatal(err)
	}
	if job.Kind() != domain.ExportKindCampaigns {
		t.Errorf("kind = %s", job.Kind())
	}
	if n := len(readCSV(t, data)); n != 2 {
		t.Errorf("records = %d, want header + 1 event", n)
	}
}
