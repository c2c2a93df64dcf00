// Package printout renders printable documents: kitchen tickets for the
// order board and a QR poster pointing at the public catalog.
package printout

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"

	"github.com/pedinu/api/internal/database"
	"github.com/pedinu/api/internal/kitchen"
	"github.com/pedinu/api/internal/whatsapp"
)

const (
	DefaultQRSize = 256
	ticketWidth   = 80.0 // thermal roll, mm
)

// CatalogQR encodes url as a PNG QR code of size x size pixels.
func CatalogQR(url string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultQRSize
	}
	png, err := qrcode.Encode(url, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

// CatalogPoster is an A4 page with the business name and a large QR code
// for the catalog link, meant to be printed and left on tables.
func CatalogPoster(businessName, url string) ([]byte, error) {
	qr, err := CatalogQR(url, 512)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 28)
	pdf.CellFormat(0, 20, tr(businessName), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 16)
	pdf.CellFormat(0, 10, tr("Aponte a câmera e faça seu pedido"), "", 1, "C", false, 0, "")

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(qr))
	pdf.ImageOptions("qr", 45, 60, 120, 120, false, opts, 0, "")

	pdf.SetY(190)
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 10, url, "", 1, "C", false, 0, "")

	return output(pdf)
}

// KitchenTicket renders one order on an 80mm-wide page for thermal
// printers.
func KitchenTicket(businessName string, o kitchen.OrderView) ([]byte, error) {
	lines := 12 + len(o.Items)
	if o.DeliveryAddress != nil {
		lines += 2
	}
	if o.Notes != nil {
		lines += 2
	}
	height := float64(lines)*6 + 20

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: ticketWidth, Ht: height},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	w := ticketWidth - 8

	pdf.SetFont("Courier", "B", 12)
	pdf.CellFormat(w, 6, tr(businessName), "", 1, "C", false, 0, "")
	pdf.SetFont("Courier", "B", 16)
	pdf.CellFormat(w, 8, "#"+o.OrderNumber, "", 1, "C", false, 0, "")

	pdf.SetFont("Courier", "", 9)
	pdf.CellFormat(w, 5, o.OrderTime.Format("02/01/2006 15:04"), "", 1, "C", false, 0, "")
	separator(pdf, w)

	pdf.CellFormat(w, 5, tr("Cliente: "+o.CustomerName), "", 1, "L", false, 0, "")
	kind := "Retirada"
	if o.OrderType == database.OrderTypeDelivery {
		kind = "Entrega"
	}
	pdf.CellFormat(w, 5, tr("Tipo: "+kind), "", 1, "L", false, 0, "")
	if o.DeliveryAddress != nil {
		pdf.MultiCell(w, 5, tr("Endereço: "+*o.DeliveryAddress), "", "L", false)
	}
	separator(pdf, w)

	for _, it := range o.Items {
		qty := strconv.Itoa(it.Quantity) + "x "
		line := it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		pdf.CellFormat(w-22, 5, tr(qty+it.Name), "", 0, "L", false, 0, "")
		pdf.CellFormat(22, 5, "R$ "+whatsapp.FormatBRL(line), "", 1, "R", false, 0, "")
	}
	separator(pdf, w)

	total, err := decimal.NewFromString(o.Total)
	if err != nil {
		total = decimal.Zero
	}
	pdf.SetFont("Courier", "B", 11)
	pdf.CellFormat(w-30, 6, "TOTAL", "", 0, "L", false, 0, "")
	pdf.CellFormat(30, 6, "R$ "+whatsapp.FormatBRL(total), "", 1, "R", false, 0, "")
	pdf.SetFont("Courier", "", 9)
	pdf.CellFormat(w, 5, tr("Pagamento: "+o.PaymentLabel), "", 1, "L", false, 0, "")

	if o.Notes != nil {
		separator(pdf, w)
		pdf.MultiCell(w, 5, tr("Obs: "+*o.Notes), "", "L", false)
	}

	return output(pdf)
}

func separator(pdf *gofpdf.Fpdf, w float64) {
	x, y := pdf.GetXY()
	pdf.Line(x, y+1, x+w, y+1)
	pdf.Ln(3)
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
