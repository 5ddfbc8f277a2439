package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/sodam/backend/internal/domain"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const totalScoreLabel = "총점"

// RenderScore replaces the kpi boxes and the out pane with a score response.
// Both targets are resolved before anything changes.
func RenderScore(page *Page, res *domain.ScoreResponse) error {
	if res == nil {
		return fmt.Errorf("%w: empty score response", domain.ErrMalformedResponse)
	}
	kpi, err := page.Element(IDKPI)
	if err != nil {
		return err
	}
	out, err := page.Element(IDOut)
	if err != nil {
		return err
	}

	pretty, err := prettyJSON(res)
	if err != nil {
		return err
	}

	boxes := make([]*html.Node, 0, len(res.Breakdown)+1)
	boxes = append(boxes, withChildren(element(atom.Div, class("box")),
		withChildren(element(atom.Div), textNode(totalScoreLabel)),
		withChildren(element(atom.Div, html.Attribute{Key: "style", Val: "font-size:22px;font-weight:800;"}),
			textNode(jsNumber(res.Score))),
	))
	for _, e := range res.Breakdown {
		boxes = append(boxes, withChildren(element(atom.Div, class("box")),
			withChildren(element(atom.Div), textNode(e.Feature)),
			withChildren(element(atom.Div, class("small")), textNode(breakdownLine(e))),
		))
	}

	replaceChildren(kpi, boxes...)
	replaceChildren(out, textNode(pretty))
	return nil
}

func breakdownLine(e domain.BreakdownEntry) string {
	return fmt.Sprintf("value: %s · weight: %s · contrib: %s", jsNumber(e.Value), jsNumber(e.Weight), toFixed(e.Contrib, 3))
}

// prettyJSON indents the response as received, keeping its key order
func prettyJSON(res *domain.ScoreResponse) (string, error) {
	var buf bytes.Buffer
	if len(res.Raw) > 0 {
		if err := json.Indent(&buf, res.Raw, "", "  "); err == nil {
			return buf.String(), nil
		}
		buf.Reset()
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode score response: %w", err)
	}
	return string(data), nil
}

// RenderSample replaces the sample table rows, one per item in order
func RenderSample(page *Page, res *domain.SampleResponse) error {
	if res == nil {
		return fmt.Errorf("%w: empty sample response", domain.ErrMalformedResponse)
	}
	tbody, err := page.tableBody(IDTable)
	if err != nil {
		return err
	}

	rows := make([]*html.Node, 0, len(res.Items))
	for _, item := range res.Items {
		tr := withChildren(element(atom.Tr),
			withChildren(element(atom.Td), textNode(item.AreaName)),
			withChildren(element(atom.Td), withChildren(element(atom.B), textNode(jsNumber(item.Score)))),
		)
		for _, v := range item.Features.Values() {
			tr.AppendChild(withChildren(element(atom.Td, class("small")), textNode(jsNumber(v))))
		}
		rows = append(rows, tr)
	}

	replaceChildren(tbody, rows...)
	return nil
}
