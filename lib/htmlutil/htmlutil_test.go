package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const rolloverPage = `<html><body>
<div class="error" style="display:none;">  </div>
<form method="POST" action="/daily-rollover/complete">
	<input type="hidden" name="_token" value="Xy12abc">
	<input type="text" name="_token_decoy" value="nope">
	<p>Good <b>morning</b>!</p>
</form>
</body></html>`

func parse(t *testing.T, page string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestHiddenInput(t *testing.T) {
	doc := parse(t, rolloverPage)

	token, err := HiddenInput(doc, "_token")
	require.NoError(t, err)
	require.Equal(t, "Xy12abc", token)

	_, err = HiddenInput(doc, "_token_decoy")
	require.Error(t, err)
}

func TestFormAction(t *testing.T) {
	doc := parse(t, rolloverPage)
	require.Equal(t, "/daily-rollover/complete", FormAction(doc, "_token"))
	require.Equal(t, "", FormAction(doc, "missing"))
}

func TestText(t *testing.T) {
	doc := parse(t, rolloverPage)
	p := doc.Find("p")
	require.Equal(t, "Good morning!", GetText(p.Nodes[0]))
	require.Equal(t, []string{"Good", "morning", "!"}, StrippedStrings(p))
}
