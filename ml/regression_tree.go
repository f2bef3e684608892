package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

const TypeRegressionTree = "regression_tree"

type RegressionTree struct {
	meta  Metadata
	width int
	nodes []TreeNode
}

type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	Value      float64 `json:"value"`
	IsLeaf     bool    `json:"is_leaf"`
}

type treeArtifact struct {
	Metadata
	Width int        `json:"input_width,omitempty"`
	Nodes []TreeNode `json:"nodes"`
}

func NewRegressionTree(meta Metadata, width int, nodes []TreeNode) (*RegressionTree, error) {
	meta.ModelType = TypeRegressionTree
	tree := &RegressionTree{meta: meta}
	if err := tree.setNodes(width, append([]TreeNode(nil), nodes...)); err != nil {
		return nil, err
	}
	return tree, nil
}

// Predict walks from the root; a split sends features[idx] <= threshold left.
func (rt *RegressionTree) Predict(features []float64) (float64, error) {
	if len(rt.nodes) == 0 {
		return 0, ErrNotLoaded
	}
	if err := checkWidth(features, rt.width); err != nil {
		return 0, err
	}
	idx := 0
	for steps := 0; steps < len(rt.nodes); steps++ {
		node := rt.nodes[idx]
		if node.IsLeaf {
			return node.Value, nil
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
	}
	return 0, errors.New("invalid tree state")
}

func (rt *RegressionTree) InputWidth() int {
	return rt.width
}

func (rt *RegressionTree) Metadata() Metadata {
	return rt.meta
}

func (rt *RegressionTree) Save(path string) error {
	if len(rt.nodes) == 0 {
		return ErrNotLoaded
	}
	payload, err := json.MarshalIndent(treeArtifact{
		Metadata: rt.meta,
		Width:    rt.width,
		Nodes:    rt.nodes,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (rt *RegressionTree) decode(payload []byte) error {
	var artifact treeArtifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return err
	}
	width := artifact.Width
	if width == 0 {
		width = len(artifact.FeatureNames)
	}
	if len(artifact.FeatureNames) > 0 && len(artifact.FeatureNames) != width {
		return errors.New("feature_names and input_width mismatch")
	}
	if err := rt.setNodes(width, artifact.Nodes); err != nil {
		return err
	}
	rt.meta = artifact.Metadata
	return nil
}

// setNodes checks the flattened layout up front so Predict never indexes out
// of range.
func (rt *RegressionTree) setNodes(width int, nodes []TreeNode) error {
	if len(nodes) == 0 {
		return errors.New("tree has no nodes")
	}
	if width <= 0 {
		return errors.New("tree input width unknown")
	}
	for i, node := range nodes {
		if node.IsLeaf {
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= width {
			return fmt.Errorf("node %d: feature index %d out of range", i, node.FeatureIdx)
		}
		if node.LeftChild <= 0 || node.LeftChild >= len(nodes) || node.RightChild <= 0 || node.RightChild >= len(nodes) {
			return fmt.Errorf("node %d: child index out of range", i)
		}
	}
	rt.width = width
	rt.nodes = nodes
	return nil
}
