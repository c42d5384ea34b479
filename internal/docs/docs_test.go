package docs

import (
	"encoding/json"
	"testing"

	"github.com/swaggo/swag"
)

func TestSwaggerDoc_RendersValidJSON(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	if err != nil {
		t.Fatalf("ReadDoc: %v", err)
	}
	var doc struct {
		BasePath string                    `json:"basePath"`
		Paths    map[string]map[string]any `json:"paths"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if doc.BasePath != "/api" {
		t.Fatalf("basePath=%q", doc.BasePath)
	}
	if _, ok := doc.Paths["/leaderboard"]["get"]; !ok {
		t.Fatalf("missing GET /leaderboard")
	}
	if _, ok := doc.Paths["/submit-score"]["post"]; !ok {
		t.Fatalf("missing POST /submit-score")
	}
}
