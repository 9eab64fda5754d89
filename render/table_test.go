package render

import (
	"context"
	"fmt"
	"testing"

	"github.com/eazisol/podoc/builder"
)

func testTable() (*lineItemTable, *Surface, builder.PDFBuilder) {
	opts := Options{}.withDefaults()
	s, b := testSurface()
	return newLineItemTable(s, opts, newImagePipeline(opts)), s, b
}

func TestTable_ColumnEdgesSpanContentWidth(t *testing.T) {
	tbl, s, _ := testTable()
	if len(tbl.xs) != len(lineItemColumns)+1 {
		t.Fatalf("edge count = %d", len(tbl.xs))
	}
	if tbl.xs[0] != s.Left() || tbl.xs[len(tbl.xs)-1] != s.Right() {
		t.Fatalf("rails off the margins: %f..%f", tbl.xs[0], tbl.xs[len(tbl.xs)-1])
	}
	for i := 1; i < len(tbl.xs); i++ {
		if tbl.xs[i] <= tbl.xs[i-1] {
			t.Fatalf("non-increasing column edge at %d", i)
		}
	}
}

func TestTable_EmptyItemsDrawsNothing(t *testing.T) {
	tbl, s, b := testTable()
	before := s.Y()
	tbl.draw(context.Background(), nil)
	if s.Y() != before {
		t.Fatalf("cursor moved for an empty table")
	}
	s.Finish()
	doc, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("page added for an empty table")
	}
	if len(doc.Pages[0].Contents) != 0 && len(doc.Pages[0].Contents[0].Operations) != 0 {
		t.Fatalf("operations emitted for an empty table")
	}
}

func TestTable_BorderClosesAtTrueLastRow(t *testing.T) {
	tbl, s, b := testTable()
	items := make([]LineItem, 40)
	for i := range items {
		items[i] = LineItem{
			ProductID: fmt.Sprintf("p%02d", i),
			SKU:       fmt.Sprintf("SKU-%02d", i),
			Name:      "Crew neck t-shirt, 180gsm combed cotton, pre-shrunk",
			Quantity:  10,
			UnitPrice: 4,
			Total:     40,
		}
	}
	tbl.draw(context.Background(), items)

	if s.PageIndex() == 0 {
		t.Fatalf("40 rows should not fit on one page")
	}
	if tbl.lastBottom != s.Y() {
		t.Fatalf("bottom border at %.2f, cursor at %.2f", tbl.lastBottom, s.Y())
	}
	if tbl.lastBottom > s.Bottom() {
		t.Fatalf("bottom border below the bottom margin: %.2f > %.2f", tbl.lastBottom, s.Bottom())
	}
	if b.PageCount() != s.PageIndex()+1 {
		t.Fatalf("page count %d disagrees with page index %d", b.PageCount(), s.PageIndex())
	}
}

func TestTable_PaginationConservesRows(t *testing.T) {
	tbl, s, _ := testTable()
	opts := tbl.opts
	const n = 25
	items := make([]LineItem, n)
	for i := range items {
		items[i] = LineItem{ProductID: fmt.Sprintf("p%02d", i), SKU: fmt.Sprintf("S%02d", i), Name: "Widget"}
	}
	top := s.Y()
	tbl.draw(context.Background(), items)

	usable := s.Bottom() - opts.Margins.Top
	emitted := float64(s.PageIndex())*usable + (s.Y() - top)
	minNeeded := float64(n) * tbl.minRowHeight()
	if emitted < minNeeded {
		t.Fatalf("emitted extent %.2f cannot hold %d rows needing %.2f", emitted, n, minNeeded)
	}
}

func TestTable_RowCellsContent(t *testing.T) {
	tbl, _, _ := testTable()
	item := LineItem{
		SKU: "TS-1", Name: "Shirt", Notes: "no logo",
		Quantity: 12.5, UnitPrice: 4.1, Total: 51.25,
		Attributes: []byte(`{"color":"Red"}`),
	}
	cells := tbl.rowCells(item)
	if len(cells[0]) != 0 {
		t.Fatalf("image column must carry no text")
	}
	if cells[1][0] != "TS-1" {
		t.Fatalf("sku cell = %v", cells[1])
	}
	if len(cells[2]) < 2 {
		t.Fatalf("notes not folded into description: %v", cells[2])
	}
	if cells[3][0] != "Red" {
		t.Fatalf("color cell = %v", cells[3])
	}
	if cells[4][0] != "4.10" || cells[5][0] != "12.50" || cells[6][0] != "51.25" {
		t.Fatalf("numeric cells = %v %v %v", cells[4], cells[5], cells[6])
	}
}
