package service

import (
	"fmt"
	"strings"
	"testing"

	"scholar-agent-go/internal/model"
	"scholar-agent-go/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposer_HistoryOrderAndTrailer(t *testing.T) {
	c := NewComposer("gemini-2.5-flash", "persona", 0)

	history := []model.Turn{
		model.NewTurn(model.RoleModel, "hoş geldiniz"),
		model.NewTurn(model.RoleUser, "ilk soru"),
		model.NewTurn(model.RoleModel, "ilk cevap"),
		model.NewTurn(model.RoleUser, "ikinci soru"),
		model.NewTurn(model.RoleModel, "ikinci cevap"),
	}
	current := model.NewTurn(model.RoleUser, "son mesaj")
	doc := "Giriş bölümü. p=.03"

	req, err := c.Compose(append(history, current), nil, doc)
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.5-flash", req.Model)
	assert.Equal(t, "persona", req.SystemInstruction)
	require.Len(t, req.Contents, len(history)+1)

	for i, h := range history {
		got := req.Contents[i]
		assert.Equal(t, string(h.Role), string(got.Role), "turn %d", i)
		require.Len(t, got.Parts, 1)
		assert.Equal(t, h.Text, got.Parts[0].Text)
	}

	last := req.Contents[len(req.Contents)-1]
	assert.Equal(t, llm.RoleUser, last.Role)
	require.Len(t, last.Parts, 2)
	assert.Equal(t, "son mesaj", last.Parts[0].Text)
	trailer := last.Parts[len(last.Parts)-1].Text
	assert.Contains(t, trailer, doc)
	assert.True(t, strings.HasPrefix(trailer, documentTrailerHead+doc))
}

func TestComposer_SuggestionAnnotation(t *testing.T) {
	c := NewComposer("m", "s", 0)

	suggested := model.NewTurn(model.RoleModel, "daha resmi yazdım")
	suggested.SuggestedContent = "TAM METİN v2"
	turns := []model.Turn{
		model.NewTurn(model.RoleUser, "daha resmi yaz"),
		suggested,
		model.NewTurn(model.RoleUser, "teşekkürler"),
	}

	req, err := c.Compose(turns, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "daha resmi yazdım"+suggestionNoteHeader+"TAM METİN v2", req.Contents[1].Parts[0].Text)
	assert.Equal(t, "daha resmi yaz", req.Contents[0].Parts[0].Text)
}

func TestComposer_AttachmentsPrecedeText(t *testing.T) {
	c := NewComposer("m", "s", 0)
	attachments := []model.Attachment{
		{Name: "a.pdf", MIMEType: "application/pdf", Data: "QQ=="},
		{Name: "b.png", MIMEType: "image/png", Data: "Qg=="},
	}

	req, err := c.Compose([]model.Turn{model.NewTurn(model.RoleUser, "bunları oku")}, attachments, "doc")
	require.NoError(t, err)
	require.Len(t, req.Contents, 1)

	parts := req.Contents[0].Parts
	require.Len(t, parts, 4)
	assert.Equal(t, llm.InlinePart("application/pdf", "QQ=="), parts[0])
	assert.Equal(t, llm.InlinePart("image/png", "Qg=="), parts[1])
	assert.Equal(t, "bunları oku", parts[2].Text)
	assert.Contains(t, parts[3].Text, "doc")
}

func TestComposer_AttachmentOnlyTurnOmitsEmptyText(t *testing.T) {
	c := NewComposer("m", "s", 0)
	req, err := c.Compose([]model.Turn{model.NewTurn(model.RoleUser, "")},
		[]model.Attachment{{Name: "x.pdf", MIMEType: "application/pdf", Data: "QQ=="}}, "belge")
	require.NoError(t, err)

	parts := req.Contents[0].Parts
	require.Len(t, parts, 2)
	assert.True(t, parts[0].IsInline())
	assert.Contains(t, parts[1].Text, "belge")
}

func TestComposer_HistoryLimit(t *testing.T) {
	c := NewComposer("m", "s", 3)
	var turns []model.Turn
	for i := 0; i < 10; i++ {
		turns = append(turns, model.NewTurn(model.RoleUser, fmt.Sprintf("t%d", i)))
	}

	req, err := c.Compose(turns, nil, "")
	require.NoError(t, err)
	require.Len(t, req.Contents, 4)
	assert.Equal(t, "t6", req.Contents[0].Parts[0].Text)
	assert.Equal(t, "t8", req.Contents[2].Parts[0].Text)
	assert.Equal(t, "t9", req.Contents[3].Parts[0].Text)
}

func TestComposer_SkipsLoadingPlaceholders(t *testing.T) {
	c := NewComposer("m", "s", 0)
	turns := []model.Turn{
		model.NewTurn(model.RoleUser, "a"),
		model.NewLoadingTurn(),
		model.NewTurn(model.RoleUser, "b"),
	}
	req, err := c.Compose(turns, nil, "")
	require.NoError(t, err)
	require.Len(t, req.Contents, 2)
}

func TestComposer_Empty(t *testing.T) {
	_, err := NewComposer("m", "s", 0).Compose(nil, nil, "")
	assert.Error(t, err)
}

func TestOneShot(t *testing.T) {
	req := oneShot("risk-model", "prompt", "application/json")
	assert.Equal(t, "risk-model", req.Model)
	assert.Empty(t, req.SystemInstruction)
	require.Len(t, req.Contents, 1)
	assert.Equal(t, "prompt", req.Contents[0].Parts[0].Text)
	assert.Equal(t, "application/json", req.ResponseMIMEType)
}
