package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MaghsoodSalimi/train-delay-simulator/internal/encode"
	"github.com/MaghsoodSalimi/train-delay-simulator/internal/ml"
	"github.com/MaghsoodSalimi/train-delay-simulator/internal/model"
)

const (
	ModelFile    = "model.json"
	EncoderFile  = "encoder.json"
	MetadataFile = "metadata.yaml"
)

// Encoder is the persisted encoder artifact: the route vocabulary plus
// the per-route training aggregates the serving side needs to rebuild
// feature vectors.
type Encoder struct {
	Classes    map[string]int              `json:"classes"`
	RouteStats map[string]model.RouteStats `json:"route_stats"`
}

// Mapping reconstructs the fitted encoder from the artifact.
func (e *Encoder) Mapping() *encode.Encoder {
	return &encode.Encoder{Classes: e.Classes}
}

// Metadata is the human-readable summary written alongside the model.
type Metadata struct {
	RunID        string        `yaml:"run_id"`
	TrainedAt    time.Time     `yaml:"trained_at"`
	ModelType    string        `yaml:"model_type"`
	FeatureNames []string      `yaml:"feature_names"`
	Metrics      model.Metrics `yaml:"metrics"`
	Seed         int64         `yaml:"seed"`
	Rows         RowCounts     `yaml:"rows"`
}

type RowCounts struct {
	Total int `yaml:"total"`
	Train int `yaml:"train"`
	Test  int `yaml:"test"`
}

type modelEnvelope struct {
	Type  string          `json:"type"`
	Model json.RawMessage `json:"model"`
}

// Save writes the three artifacts atomically: everything lands in a
// staging directory first and is renamed into place only after all three
// writes succeeded, so a crash mid-save leaves previous artifacts intact.
func Save(dir string, m ml.Regressor, enc Encoder, meta Metadata) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	stage, err := os.MkdirTemp(dir, ".staging-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(stage)

	mb, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}
	envelope, err := json.Marshal(modelEnvelope{Type: m.Type(), Model: mb})
	if err != nil {
		return err
	}
	eb, err := json.Marshal(enc)
	if err != nil {
		return fmt.Errorf("marshal encoder: %w", err)
	}
	yb, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	files := map[string][]byte{ModelFile: envelope, EncoderFile: eb, MetadataFile: yb}
	for name, b := range files {
		if err := os.WriteFile(filepath.Join(stage, name), b, 0o644); err != nil {
			return fmt.Errorf("stage %s: %w", name, err)
		}
	}
	for name := range files {
		if err := os.Rename(filepath.Join(stage, name), filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("publish %s: %w", name, err)
		}
	}
	return nil
}

// LoadModel reads the model artifact and reconstructs a Regressor of the
// recorded type.
func LoadModel(dir string) (ml.Regressor, error) {
	b, err := os.ReadFile(filepath.Join(dir, ModelFile))
	if err != nil {
		return nil, err
	}
	var env modelEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	switch env.Type {
	case "gradient_boosting":
		var g ml.GradientBoosting
		if err := json.Unmarshal(env.Model, &g); err != nil {
			return nil, err
		}
		return &g, nil
	case "random_forest":
		var f ml.RandomForest
		if err := json.Unmarshal(env.Model, &f); err != nil {
			return nil, err
		}
		return &f, nil
	default:
		return nil, fmt.Errorf("unknown model type %q", env.Type)
	}
}

// LoadEncoder reads the encoder artifact.
func LoadEncoder(dir string) (Encoder, error) {
	var enc Encoder
	b, err := os.ReadFile(filepath.Join(dir, EncoderFile))
	if err != nil {
		return enc, err
	}
	if err := json.Unmarshal(b, &enc); err != nil {
		return enc, fmt.Errorf("decode encoder artifact: %w", err)
	}
	return enc, nil
}

// LoadMetadata reads the metadata artifact.
func LoadMetadata(dir string) (Metadata, error) {
	var meta Metadata
	b, err := os.ReadFile(filepath.Join(dir, MetadataFile))
	if err != nil {
		return meta, err
	}
	if err := yaml.Unmarshal(b, &meta); err != nil {
		return meta, fmt.Errorf("decode metadata artifact: %w", err)
	}
	return meta, nil
}
