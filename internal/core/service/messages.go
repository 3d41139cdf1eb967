package service

import (
	"fmt"
	"strings"

	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/core/domain"
)

const helpText = "Elérhető parancsok:\n" +
	"`!raktar` - A raktár tartalmának listázása.\n" +
	"`!raktar [termék]` - Egy adott termék keresése a raktárban.\n" +
	"`!hozzaad [termék] [mennyiség]` - Új termék hozzáadása.\n" +
	"`!modosit [termék] [új mennyiség]` - Termék mennyiségének módosítása.\n" +
	"`!torol [termék]` - Termék törlése a raktárból.\n" +
	"`!reset` - A csatorna összes üzenetének törlése, majd a parancsok és a raktár tartalmának kiírása.\n" +
	"`!segitseg` - Parancsok listájának megjelenítése."

const (
	msgEmpty          = "A raktár üres vagy nincs ilyen termék."
	msgUnknown        = "Ismeretlen parancs. Írd be, hogy `!segitseg`, hogy megismerd az elérhető parancsokat."
	msgNameCharset    = "A termék neve csak betűket és számokat tartalmazhat."
	msgNameTooLong    = "A termék neve legfeljebb 100 karakter lehet."
	msgQuantityPos    = "A mennyiségnek pozitív számnak kell lennie."
	msgQuantityNonNeg = "A mennyiség nem lehet negatív."

	usageList   = "Helytelen parancs. Használat: `!raktar [termék]`"
	usageAdd    = "Helytelen parancs. Használat: `!hozzaad [termék] [mennyiség]`"
	usageUpdate = "Helytelen parancs. Használat: `!modosit [termék] [új mennyiség]`"
	usageDelete = "Helytelen parancs. Használat: `!torol [termék]`"

	fmtAdded     = "✅ **%s** hozzáadva a raktárhoz, %d db mennyiséggel!"
	fmtUpdated   = "**%s** mennyisége frissítve: %d db."
	fmtDeleted   = "**%s** törölve a raktárból."
	fmtNotFound  = "Nincs ilyen nevű termék a raktárban: %s"
	fmtDuplicate = "Már van ilyen nevű termék a raktárban: %s. Használd a `!modosit` parancsot."
)

const (
	nameColumnWidth     = 20
	quantityColumnWidth = 10
)

// formatTable renders rows as a fixed-width table inside a code block.
func formatTable(items []domain.Item) string {
	var b strings.Builder
	b.WriteString("```\n")
	fmt.Fprintf(&b, "%-*s%-*s\n", nameColumnWidth, "Termék név", quantityColumnWidth, "Mennyiség")
	b.WriteString(strings.Repeat("-", nameColumnWidth+quantityColumnWidth))
	b.WriteString("\n")
	for _, item := range items {
		fmt.Fprintf(&b, "%-*s%-*d\n", nameColumnWidth, item.Name, quantityColumnWidth, item.Quantity)
	}
	b.WriteString("```")
	return b.String()
}
