package infra

// pdf.go — sale receipts rendered with go-pdf/fpdf.
// Narrow receipt-style page with:
//   - Business header (name, NIT, address)
//   - Sale number, date, channel and customer
//   - Line table (product, quantity, subtotal)
//   - Bold total and the payment records with their state

import (
	"bytes"
	"fmt"

	"github.com/Crissancio/Backend-Taller/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerarComprobanteVentaPDF renders the receipt of a sale and returns the PDF bytes.
func GenerarComprobanteVentaPDF(venta *model.Venta, empresa *model.Microempresa) ([]byte, error) {
	// Height grows with the number of lines so long sales stay on one page.
	alto := 110.0 + 5*float64(len(venta.Detalles)+len(venta.Pagos))
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 80, Ht: alto},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(false, 4)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 7, tr(empresa.Nombre), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, "NIT "+empresa.NIT, "", 1, "C", false, 0, "")
	if empresa.Direccion != nil {
		pdf.CellFormat(contentW, 4, tr(*empresa.Direccion), "", 1, "C", false, 0, "")
	}
	pdf.Ln(2)

	// ── Sale info ────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Venta #%d (%s)", venta.ID, venta.Tipo), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, venta.Fecha.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	if venta.Cliente != nil {
		pdf.CellFormat(contentW, 4, tr("Cliente: "+venta.Cliente.Nombre), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(contentW, 4, "Estado: "+venta.Estado, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Lines ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.52
	col2 := contentW * 0.16
	col3 := contentW * 0.32

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Producto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Cant", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, d := range venta.Detalles {
		nombre := fmt.Sprintf("Producto %d", d.ProductoID)
		if d.Producto != nil {
			nombre = d.Producto.Nombre
		}
		if r := []rune(nombre); len(r) > 24 {
			nombre = string(r[:23]) + "."
		}
		pdf.CellFormat(col1, 5, tr(nombre), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", d.Cantidad), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, empresa.Moneda+" "+d.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, empresa.Moneda+" "+venta.Total.StringFixed(2), "", 1, "R", false, 0, "")

	// ── Payments ─────────────────────────────────────────────────────────────
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 7)
	for _, p := range venta.Pagos {
		pdf.CellFormat(col1+col2, 4, "Pago ("+p.Metodo+"):", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 4, p.Estado, "", 1, "R", false, 0, "")
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, tr("¡Gracias por su compra!"), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render: %w", err)
	}
	return buf.Bytes(), nil
}
