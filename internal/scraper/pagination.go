package scraper

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Box is an element's on-screen rectangle.
type Box struct {
	X, Y, Width, Height float64
}

// MaxPageNumber returns the largest purely numeric label, or 1 when there is
// none. Labels such as "…" or "›" are ignored.
func MaxPageNumber(labels []string) int {
	max := 0
	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" || strings.Trim(label, "0123456789") != "" {
			continue
		}
		n, err := strconv.Atoi(label)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}

	if max < 1 {
		return 1
	}
	return max
}

// Rightmost returns the index of the box furthest to the right, or -1 for an
// empty slice. The max-mileage field is the rightmost of the range inputs no
// matter how the site orders them in the DOM.
func Rightmost(boxes []Box) int {
	idx := -1
	for i, b := range boxes {
		if idx == -1 || b.X > boxes[idx].X {
			idx = i
		}
	}
	return idx
}

// pageLabels reads the item labels of a server-rendered pagination list,
// skipping items hidden with inline styles.
func pageLabels(list *goquery.Selection) []string {
	var labels []string
	list.Find("li").Each(func(_ int, li *goquery.Selection) {
		style, _ := li.Attr("style")
		if strings.Contains(strings.ReplaceAll(style, " ", ""), "display:none") {
			return
		}
		labels = append(labels, strings.TrimSpace(li.Text()))
	})
	return labels
}
