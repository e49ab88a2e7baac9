package htmlutil

import (
	"bytes"
	"encoding/json"
	"fmt"

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
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// FirstText returns the data of the first direct text child of the selection's
// first node. Course tiles put the display name in a bare text node ahead of
// nested markup, so GetText would glue unrelated labels onto it.
func FirstText(sel *goquery.Selection) string {
	if len(sel.Nodes) == 0 {
		return ""
	}
	for child := sel.Nodes[0].FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.TextNode {
			return child.Data
		}
	}
	return ""
}

// DecodeAttrJSON unmarshals a JSON document embedded in an attribute,
// e.g. the react props Gradescope renders onto mount-point elements.
func DecodeAttrJSON(sel *goquery.Selection, attr string, out any) error {
	raw, ok := sel.Attr(attr)
	if !ok {
		return fmt.Errorf("attribute %q not present", attr)
	}
	err := json.Unmarshal([]byte(raw), out)
	if err != nil {
		return fmt.Errorf("decode %q: %w", attr, err)
	}
	return nil
}
