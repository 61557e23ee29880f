package application

import (
	"context"
	"reflect"
	"testing"
	"time"

	catalogdomain "pricetrack/internal/catalog/domain"
	"pricetrack/internal/matching/domain"
	shareddomain "pricetrack/internal/shared/domain"
	"pricetrack/internal/testhelpers"
)

// ========================================
// INTEGRATION TESTS - REAL DATABASE
// ========================================

func setupMatchService(tc *testhelpers.TestContext) *MatchService {
	return NewMatchService(tc.UoW, tc.MatchRepo, tc.FinalProductRepo, tc.ListingRepo, tc.Log)
}

func listingIDs(v ...int64) []catalogdomain.ListingID {
	out := make([]catalogdomain.ListingID, len(v))
	for i, x := range v {
		out[i] = catalogdomain.ListingID(x)
	}
	return out
}

func TestReplaceMatches_IdempotentAndExact(t *testing.T) {
	testhelpers.SkipIfNoDatabase(t)
	tc := testhelpers.SetupTestContext(t)
	defer tc.Cleanup()

	ctx := context.Background()
	svc := setupMatchService(tc)

	fp := catalogdomain.FinalProductID(tc.InsertFinalProduct(t, "Air Max 90", ""))
	now := time.Now()
	a := tc.InsertListing(t, "amazon", "Air Max 90 A", "Nike", "Sneakers", now)
	b := tc.InsertListing(t, "n11", "Air Max 90 B", "Nike", "Sneakers", now)
	c := tc.InsertListing(t, "trendyol", "Air Max 90 C", "Nike", "Sneakers", now)

	first, err := svc.ReplaceMatches(ctx, fp, listingIDs(a, b, b))
	if err != nil {
		t.Fatalf("first replace: %v", err)
	}
	if first != (domain.ReconcileResult{Added: 2, Removed: 0}) {
		t.Errorf("first = %+v", first)
	}

	second, err := svc.ReplaceMatches(ctx, fp, listingIDs(b, a))
	if err != nil {
		t.Fatalf("second replace: %v", err)
	}
	if second != (domain.ReconcileResult{}) {
		t.Errorf("second call should be a no-op, got %+v", second)
	}

	third, err := svc.ReplaceMatches(ctx, fp, listingIDs(b, c))
	if err != nil {
		t.Fatalf("third replace: %v", err)
	}
	if third != (domain.ReconcileResult{Added: 1, Removed: 1}) {
		t.Errorf("third = %+v", third)
	}

	got, err := svc.GetMatchedListingIDs(ctx, fp)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, listingIDs(b, c)) {
		t.Errorf("matched = %v, want %v", got, listingIDs(b, c))
	}

	cleared, err := svc.ReplaceMatches(ctx, fp, nil)
	if err != nil {
		t.Fatal(err)
	}
	if cleared != (domain.ReconcileResult{Removed: 2}) {
		t.Errorf("cleared = %+v", cleared)
	}
}

func TestReplaceMatches_InvalidReferenceRollsBack(t *testing.T) {
	testhelpers.SkipIfNoDatabase(t)
	tc := testhelpers.SetupTestContext(t)
	defer tc.Cleanup()

	ctx := context.Background()
	svc := setupMatchService(tc)

	fp := tc.InsertFinalProduct(t, "Backpack", "")
	a := tc.InsertListing(t, "amazon", "Backpack A", "North Face", "Backpack", time.Now())
	b := tc.InsertListing(t, "amazon", "Backpack B", "North Face", "Backpack", time.Now())
	tc.InsertMatch(t, fp, a)

	_, err := svc.ReplaceMatches(ctx, catalogdomain.FinalProductID(fp), listingIDs(b, 999999))
	if !shareddomain.IsKind(err, shareddomain.KindInvalidReference) {
		t.Fatalf("got %v, want InvalidReference", err)
	}

	got, _ := svc.GetMatchedListingIDs(ctx, catalogdomain.FinalProductID(fp))
	if !reflect.DeepEqual(got, listingIDs(a)) {
		t.Errorf("state changed after failed replace: %v", got)
	}

	if _, err := svc.ReplaceMatches(ctx, 424242, listingIDs(a)); !shareddomain.IsKind(err, shareddomain.KindInvalidReference) {
		t.Errorf("unknown final product: got %v, want InvalidReference", err)
	}
	if _, err := svc.ReplaceMatches(ctx, catalogdomain.FinalProductID(fp), listingIDs(0)); !shareddomain.IsKind(err, shareddomain.KindInvalidInput) {
		t.Errorf("zero listing id: got %v, want InvalidInput", err)
	}
}

func TestAddMatches_IgnoresDuplicates(t *testing.T) {
	testhelpers.SkipIfNoDatabase(t)
	tc := testhelpers.SetupTestContext(t)
	defer tc.Cleanup()

	ctx := context.Background()
	svc := setupMatchService(tc)

	fp := tc.InsertFinalProduct(t, "Watch", "")
	a := tc.InsertListing(t, "amazon", "Watch A", "Samsung", "Smartwatch", time.Now())
	b := tc.InsertListing(t, "n11", "Watch B", "Samsung", "Smartwatch", time.Now())
	tc.InsertMatch(t, fp, a)

	added, err := svc.AddMatches(ctx, catalogdomain.FinalProductID(fp), listingIDs(a, b))
	if err != nil {
		t.Fatal(err)
	}
	if added != 1 {
		t.Errorf("added = %d, want 1", added)
	}
	if n := tc.CountMatches(t, fp); n != 2 {
		t.Errorf("matches = %d, want 2", n)
	}
}

func TestRemoveMatch(t *testing.T) {
	testhelpers.SkipIfNoDatabase(t)
	tc := testhelpers.SetupTestContext(t)
	defer tc.Cleanup()

	ctx := context.Background()
	svc := setupMatchService(tc)

	fp := tc.InsertFinalProduct(t, "Jacket", "")
	a := tc.InsertListing(t, "amazon", "Jacket A", "North Face", "Jacket", time.Now())
	tc.InsertMatch(t, fp, a)

	if err := svc.RemoveMatch(ctx, catalogdomain.FinalProductID(fp), catalogdomain.ListingID(a)); err != nil {
		t.Fatal(err)
	}
	err := svc.RemoveMatch(ctx, catalogdomain.FinalProductID(fp), catalogdomain.ListingID(a))
	if !shareddomain.IsKind(err, shareddomain.KindInvalidReference) {
		t.Errorf("second remove: got %v, want InvalidReference", err)
	}
}

func TestMatchService_ListingMayMatchSeveralFinalProducts(t *testing.T) {
	testhelpers.SkipIfNoDatabase(t)
	tc := testhelpers.SetupTestContext(t)
	defer tc.Cleanup()

	ctx := context.Background()
	svc := setupMatchService(tc)

	fp1 := catalogdomain.FinalProductID(tc.InsertFinalProduct(t, "P1", ""))
	fp2 := catalogdomain.FinalProductID(tc.InsertFinalProduct(t, "P2", ""))
	a := tc.InsertListing(t, "amazon", "Shared", "Sony", "Headphones", time.Now())

	if _, err := svc.ReplaceMatches(ctx, fp1, listingIDs(a)); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ReplaceMatches(ctx, fp2, listingIDs(a)); err != nil {
		t.Fatalf("listing shared across final products should be accepted: %v", err)
	}
}

func BenchmarkReplaceMatches_Toggle(b *testing.B) {
	testhelpers.SkipIfNoDatabase(b)
	tc := testhelpers.SetupTestContext(b)
	defer tc.Cleanup()

	ctx := context.Background()
	svc := setupMatchService(tc)

	fp := catalogdomain.FinalProductID(tc.InsertFinalProduct(b, "Bench", ""))
	var setA, setB []catalogdomain.ListingID
	for i := 0; i < 50; i++ {
		id := catalogdomain.ListingID(tc.InsertListing(b, "amazon", "bench", "Nike", "Sneakers", time.Now()))
		if i%2 == 0 {
			setA = append(setA, id)
		} else {
			setB = append(setB, id)
		}
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		target := setA
		if i%2 == 1 {
			target = setB
		}
		if _, err := svc.ReplaceMatches(ctx, fp, target); err != nil {
			b.Fatal(err)
		}
	}
}
