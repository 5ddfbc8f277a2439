package dashboard

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// WriteText prints the rendered kpi boxes and sample rows as plain text,
// one box or row per line with tab-separated cells.
func WriteText(w io.Writer, page *Page) error {
	kpi, err := page.Element(IDKPI)
	if err != nil {
		return err
	}
	tbody, err := page.tableBody(IDTable)
	if err != nil {
		return err
	}

	for _, box := range elementChildren(kpi) {
		if _, err := fmt.Fprintln(w, cellLine(box)); err != nil {
			return err
		}
	}
	for _, row := range elementChildren(tbody) {
		if row.DataAtom != atom.Tr {
			continue
		}
		if _, err := fmt.Fprintln(w, cellLine(row)); err != nil {
			return err
		}
	}
	return nil
}

func cellLine(n *html.Node) string {
	var cells []string
	for _, c := range elementChildren(n) {
		cells = append(cells, strings.TrimSpace(textContent(c)))
	}
	return strings.Join(cells, "\t")
}
