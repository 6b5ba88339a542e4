package describer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"ppe-inspector/internal/domain/entity"
)

func testSummary() *entity.Summary {
	return &entity.Summary{
		Counts:     map[string]int{"NO-Hardhat": 2, "Person": 1},
		Labels:     []string{"NO-Hardhat", "Person"},
		Primary:    &entity.Detection{Label: "NO-Hardhat", Confidence: 0.8},
		Total:      3,
		Violations: 1,
		Workers:    3,
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(testSummary(), entity.DefaultComplianceMap())
	require.Contains(t, prompt, "- NO-Hardhat (Missing Hardhat): 2")
	require.Contains(t, prompt, "- Person (Worker): 1")
	require.Contains(t, prompt, "Workers: 3, compliant items: 0, violations: 1.")
}

func TestOllamaDescriber_Describe(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":   got.Model,
			"message": map[string]string{"role": "assistant", "content": " Two workers lack hardhats. "},
			"done":    true,
		})
	}))
	defer srv.Close()

	d, err := NewOllamaDescriber(srv.URL+"/api/chat", "", entity.DefaultComplianceMap())
	require.NoError(t, err)

	desc, err := d.Describe(context.Background(), testSummary())
	require.NoError(t, err)
	require.Equal(t, "Two workers lack hardhats.", desc.Text)
	require.Equal(t, DefaultModel, got.Model)
	require.Len(t, got.Messages, 1)
	require.Contains(t, got.Messages[0].Content, "Missing Hardhat")
}

func TestOllamaDescriber_NoDetectionsSkipsModel(t *testing.T) {
	d, err := NewOllamaDescriber("http://127.0.0.1:1", "m", entity.DefaultComplianceMap())
	require.NoError(t, err)

	desc, err := d.Describe(context.Background(), &entity.Summary{NoDetections: true})
	require.NoError(t, err)
	require.NotEmpty(t, desc.Text)
}

func TestNewOllamaDescriber_InvalidURL(t *testing.T) {
	_, err := NewOllamaDescriber("localhost", "m", entity.DefaultComplianceMap())
	require.Error(t, err)
}
