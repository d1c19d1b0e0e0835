package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"bomsource_backend/internal/sourcing/transport"
)

func item(id string, qty int) transport.BomLineItem {
	return transport.BomLineItem{ID: id, MPN: "MPN-" + id, Quantity: qty}
}

func offer(distributor string, price string, stock int) transport.Offer {
	return transport.Offer{
		MPN:         "MPN",
		Price:       decimal.RequireFromString(price),
		Currency:    "USD",
		Stock:       stock,
		Provider:    distributor,
		Distributor: distributor,
	}
}

func TestLowestPricePicksCheapestOfferPerItem(t *testing.T) {
	items := []transport.BomLineItem{item("a", 10)}
	offers := transport.OffersByItem{
		"a": {offer("DigiKey", "5.00", 100), offer("Mouser", "3.00", 100), offer("Octopart", "4.00", 100)},
	}

	bom := LowestPriceStrategy{}.Realize(context.Background(), items, offers, 1)
	if bom == nil {
		t.Fatal("expected a realized BOM")
	}
	if len(bom.LineItems) != 1 {
		t.Fatalf("expected 1 line item, got %d", len(bom.LineItems))
	}
	if got := bom.LineItems[0].Offer.Distributor; got != "Mouser" {
		t.Fatalf("expected cheapest offer from Mouser, got %s", got)
	}
	if want := decimal.RequireFromString("30.00"); !bom.TotalCost.Equal(want) {
		t.Fatalf("expected total cost %s, got %s", want, bom.TotalCost)
	}
}

func TestLowestPricePriceTieKeepsFirstOffer(t *testing.T) {
	items := []transport.BomLineItem{item("a", 1)}
	offers := transport.OffersByItem{
		"a": {offer("DigiKey", "2.50", 10), offer("Mouser", "2.50", 10)},
	}

	bom := LowestPriceStrategy{}.Realize(context.Background(), items, offers, 1)
	if bom == nil {
		t.Fatal("expected a realized BOM")
	}
	if got := bom.LineItems[0].Offer.Distributor; got != "DigiKey" {
		t.Fatalf("expected tie broken by offer order (DigiKey first), got %s", got)
	}
}

func TestLowestPriceSkipsItemsWithoutOffers(t *testing.T) {
	items := []transport.BomLineItem{item("a", 1), item("b", 1)}
	offers := transport.OffersByItem{
		"a": {offer("Mouser", "1.00", 10)},
		"b": {},
	}

	bom := LowestPriceStrategy{}.Realize(context.Background(), items, offers, 2)
	if bom == nil {
		t.Fatal("expected a realized BOM")
	}
	if len(bom.LineItems) != 1 {
		t.Fatalf("expected only the matched item, got %d line items", len(bom.LineItems))
	}
}

func TestLowestPriceNoOffersAtAllYieldsNil(t *testing.T) {
	items := []transport.BomLineItem{item("a", 1)}
	offers := transport.OffersByItem{"a": {}}

	if bom := (LowestPriceStrategy{}).Realize(context.Background(), items, offers, 1); bom != nil {
		t.Fatalf("expected nil BOM, got %+v", bom)
	}
}

func TestSingleDistributorPicksHighestCoverage(t *testing.T) {
	// A fulfills both items, B only one. Even though B is cheaper where it
	// competes, A wins on coverage.
	items := []transport.BomLineItem{item("a", 1), item("b", 1)}
	offers := transport.OffersByItem{
		"a": {offer("B", "0.50", 10), offer("A", "1.00", 10)},
		"b": {offer("A", "2.00", 10)},
	}

	bom := SingleDistributorStrategy{}.Realize(context.Background(), items, offers, 2)
	if bom == nil {
		t.Fatal("expected a realized BOM")
	}
	if bom.Name != "A Only" {
		t.Fatalf("expected the full-coverage distributor to win, got %q", bom.Name)
	}
	if len(bom.LineItems) != 2 {
		t.Fatalf("expected 2 covered items, got %d", len(bom.LineItems))
	}
	if len(bom.Distributors) != 1 || bom.Distributors[0] != "A" {
		t.Fatalf("expected single distributor A, got %v", bom.Distributors)
	}
}

func TestSingleDistributorCoverageTieKeepsFirstSeen(t *testing.T) {
	// DigiKey and Mouser both cover two items; DigiKey is seen first while
	// walking item a's offers, so it wins the tie.
	items := []transport.BomLineItem{item("a", 1), item("b", 1), item("c", 1)}
	offers := transport.OffersByItem{
		"a": {offer("DigiKey", "1.00", 10), offer("Mouser", "0.50", 10)},
		"b": {offer("DigiKey", "2.00", 10)},
		"c": {offer("Mouser", "3.00", 10)},
	}

	bom := SingleDistributorStrategy{}.Realize(context.Background(), items, offers, 3)
	if bom == nil {
		t.Fatal("expected a realized BOM")
	}
	if bom.Name != "DigiKey Only" {
		t.Fatalf("expected DigiKey to win the tie on first-seen order, got %q", bom.Name)
	}
	if len(bom.LineItems) != 2 {
		t.Fatalf("expected 2 covered items, got %d", len(bom.LineItems))
	}
}

func TestSingleDistributorUsesDistributorCheapestOfferPerItem(t *testing.T) {
	items := []transport.BomLineItem{item("a", 1)}
	offers := transport.OffersByItem{
		"a": {offer("Mouser", "4.00", 10), offer("Mouser", "2.00", 10)},
	}

	bom := SingleDistributorStrategy{}.Realize(context.Background(), items, offers, 1)
	if bom == nil {
		t.Fatal("expected a realized BOM")
	}
	if want := decimal.RequireFromString("2.00"); !bom.LineItems[0].UnitPrice.Equal(want) {
		t.Fatalf("expected the cheaper Mouser offer %s, got %s", want, bom.LineItems[0].UnitPrice)
	}
}

func TestSingleDistributorNoOffersYieldsNil(t *testing.T) {
	items := []transport.BomLineItem{item("a", 1)}
	offers := transport.OffersByItem{"a": {}}

	if bom := (SingleDistributorStrategy{}).Realize(context.Background(), items, offers, 1); bom != nil {
		t.Fatalf("expected nil BOM, got %+v", bom)
	}
}

func TestInStockOnlyPrefersStockedOfferOverCheaperBackorder(t *testing.T) {
	items := []transport.BomLineItem{item("a", 5)}
	offers := transport.OffersByItem{
		"a": {offer("DigiKey", "1.00", 0), offer("Mouser", "9.00", 10)},
	}

	bom := InStockOnlyStrategy{}.Realize(context.Background(), items, offers, 1)
	if bom == nil {
		t.Fatal("expected a realized BOM")
	}
	if got := bom.LineItems[0].Offer.Distributor; got != "Mouser" {
		t.Fatalf("expected the stocked Mouser offer, got %s", got)
	}
	if !bom.AllInStock {
		t.Fatal("expected the plan to be fully in stock")
	}
}

func TestInStockOnlyTreatsPartialStockAsUnavailable(t *testing.T) {
	// 4 on hand against a quantity of 5 does not count as in stock.
	items := []transport.BomLineItem{item("a", 5)}
	offers := transport.OffersByItem{
		"a": {offer("DigiKey", "1.00", 4)},
	}

	if bom := (InStockOnlyStrategy{}).Realize(context.Background(), items, offers, 1); bom != nil {
		t.Fatalf("expected nil BOM when no offer covers the quantity, got %+v", bom)
	}
}

func TestStrategiesAreDeterministic(t *testing.T) {
	items := []transport.BomLineItem{item("a", 2), item("b", 3)}
	offers := transport.OffersByItem{
		"a": {offer("DigiKey", "1.10", 50), offer("Mouser", "1.10", 50)},
		"b": {offer("Mouser", "0.75", 1), offer("DigiKey", "0.80", 100)},
	}

	strategies := []Strategy{LowestPriceStrategy{}, SingleDistributorStrategy{}, InStockOnlyStrategy{}}
	for _, strategy := range strategies {
		first := strategy.Realize(context.Background(), items, offers, 2)
		second := strategy.Realize(context.Background(), items, offers, 2)
		if (first == nil) != (second == nil) {
			t.Fatalf("%s: nilness differs between runs", strategy.Name())
		}
		if first == nil {
			continue
		}
		if !first.TotalCost.Equal(second.TotalCost) || first.Score != second.Score || len(first.LineItems) != len(second.LineItems) {
			t.Fatalf("%s: runs disagree: %+v vs %+v", strategy.Name(), first, second)
		}
		for i := range first.LineItems {
			if first.LineItems[i].Offer.Distributor != second.LineItems[i].Offer.Distributor {
				t.Fatalf("%s: selection differs at line %d", strategy.Name(), i)
			}
		}
	}
}

func TestBuildRealizedBomAggregates(t *testing.T) {
	selections := []selection{
		{item: item("a", 2), offer: offer("DigiKey", "1.50", 100)},
		{item: item("b", 1), offer: offer("Mouser", "2.00", 0)},
	}

	bom := buildRealizedBom("Test", "test plan", selections, 2)
	if bom == nil {
		t.Fatal("expected a realized BOM")
	}
	if bom.ID == "" {
		t.Fatal("expected a generated id")
	}
	if want := decimal.RequireFromString("5.00"); !bom.TotalCost.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, bom.TotalCost)
	}
	if bom.AllInStock {
		t.Fatal("expected AllInStock false with a zero-stock selection")
	}
	if len(bom.Distributors) != 2 || bom.Distributors[0] != "DigiKey" || bom.Distributors[1] != "Mouser" {
		t.Fatalf("expected distributors in first-seen order, got %v", bom.Distributors)
	}
	if bom.Currency != "USD" {
		t.Fatalf("expected USD currency, got %s", bom.Currency)
	}
	// full coverage 50, no stock bonus, two distributors 10, full coverage bonus 15
	if bom.Score != 75 {
		t.Fatalf("expected score 75, got %d", bom.Score)
	}
}
