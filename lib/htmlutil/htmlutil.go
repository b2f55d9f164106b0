package htmlutil

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		getTextRecursive(child, buffer)
	}
}

// StrippedStrings returns every non-blank text node under the selection,
// trimmed, in document order.
func StrippedStrings(sel *goquery.Selection) []string {
	var out []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			text := strings.TrimSpace(node.Data)
			if text != "" {
				out = append(out, text)
			}
			return
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return out
}

// HiddenInput looks up the value of the first hidden input with the given name.
func HiddenInput(doc *goquery.Document, name string) (string, error) {
	sel := doc.Find(fmt.Sprintf(`input[type=hidden][name="%s"]`, name)).First()
	value, ok := sel.Attr("value")
	if !ok || value == "" {
		return "", fmt.Errorf("could not find hidden input %q", name)
	}
	return value, nil
}

// FormAction returns the action of the form enclosing the given input, or
// the empty string when the form has none.
func FormAction(doc *goquery.Document, inputName string) string {
	form := doc.Find(fmt.Sprintf(`input[name="%s"]`, inputName)).First().Closest("form")
	return strings.TrimSpace(form.AttrOr("action", ""))
}
