package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/yanqian/moodfit/internal/domain/inference"
)

const (
	defaultPredictPath = "predict"
	modelFile          = "model.json"
	metadataFile       = "metadata.json"
)

// Metadata is the subset of metadata.json the service relies on.
type Metadata struct {
	Labels       []string `json:"labels"`
	ModelName    string   `json:"modelName,omitempty"`
	ImageSize    int      `json:"imageSize,omitempty"`
	PackageName  string   `json:"packageName,omitempty"`
	TimeStamp    string   `json:"timeStamp,omitempty"`
	UserMetadata any      `json:"userMetadata,omitempty"`
}

// Topology is the subset of model.json used to validate the download.
type Topology struct {
	Format          string            `json:"format,omitempty"`
	ModelTopology   json.RawMessage   `json:"modelTopology"`
	WeightsManifest []json.RawMessage `json:"weightsManifest,omitempty"`
}

// Client loads hosted image classifiers and serves predictions from their predict endpoint.
type Client struct {
	predictPath string
	httpClient  *http.Client
}

// NewClient constructs the classifier client.
func NewClient(predictPath string, httpClient *http.Client) *Client {
	path := strings.Trim(strings.TrimSpace(predictPath), "/")
	if path == "" {
		path = defaultPredictPath
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{predictPath: path, httpClient: httpClient}
}

// Load fetches model.json and metadata.json concurrently. Either failing fails the load.
func (c *Client) Load(ctx context.Context, baseURL string) (inference.Model, error) {
	base := strings.TrimSpace(baseURL)
	if base == "" {
		return nil, errors.New("model base url cannot be empty")
	}
	base = strings.TrimRight(base, "/") + "/"

	var (
		topology Topology
		meta     Metadata
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.getJSON(gctx, base+modelFile, &topology)
	})
	g.Go(func() error {
		return c.getJSON(gctx, base+metadataFile, &meta)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(topology.ModelTopology) == 0 {
		return nil, fmt.Errorf("%s has no model topology", modelFile)
	}
	if len(meta.Labels) == 0 {
		return nil, fmt.Errorf("%s has no labels", metadataFile)
	}
	return &Model{
		endpoint:   base + c.predictPath,
		labels:     append([]string(nil), meta.Labels...),
		httpClient: c.httpClient,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build model request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("model request failed: url=%s status=%d body=%s", endpoint, resp.StatusCode, string(payload))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

// Model is a loaded classifier.
type Model struct {
	endpoint   string
	labels     []string
	httpClient *http.Client
}

type predictResponse struct {
	Predictions []struct {
		ClassName   string  `json:"className"`
		Probability float64 `json:"probability"`
	} `json:"predictions"`
}

// Predict posts the frame as PNG and returns one probability per class.
func (m *Model) Predict(ctx context.Context, frame image.Image) ([]inference.Prediction, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, frame); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "image/png")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request prediction: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("predict request failed: status=%d body=%s", resp.StatusCode, string(payload))
	}
	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode prediction: %w", err)
	}
	if len(out.Predictions) == 0 {
		return nil, errors.New("prediction response is empty")
	}

	preds := make([]inference.Prediction, 0, len(out.Predictions))
	for _, p := range out.Predictions {
		preds = append(preds, inference.Prediction{Label: p.ClassName, Probability: p.Probability})
	}
	return preds, nil
}

// TotalClasses is the label count from metadata.json.
func (m *Model) TotalClasses() int {
	return len(m.labels)
}

// Labels returns the class labels in model order.
func (m *Model) Labels() []string {
	return append([]string(nil), m.labels...)
}

var (
	_ inference.Loader = (*Client)(nil)
	_ inference.Model  = (*Model)(nil)
)
