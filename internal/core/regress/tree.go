package regress

import (
	"errors"
	"math"
	"sort"
)

// treeNode is stored in a flat array; children are indexes into it. Leaves
// carry the mean target of the samples they absorbed.
type treeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	Value      float64 `json:"value"`
	IsLeaf     bool    `json:"is_leaf"`
}

type regressionTree struct {
	Nodes []treeNode `json:"nodes"`
}

func fitTree(features [][]float64, targets []float64, maxDepth, minLeaf int) (regressionTree, error) {
	if err := checkTrainingSet(features, targets); err != nil {
		return regressionTree{}, err
	}
	if maxDepth <= 0 {
		maxDepth = 3
	}
	if minLeaf <= 0 {
		minLeaf = 1
	}
	nodes := buildTreeNode(features, targets, 0, maxDepth, minLeaf)
	return regressionTree{Nodes: nodes}, nil
}

func buildTreeNode(features [][]float64, targets []float64, depth, maxDepth, minLeaf int) []treeNode {
	value := meanOf(targets)
	leaf := []treeNode{{FeatureIdx: -1, LeftChild: -1, RightChild: -1, Value: value, IsLeaf: true}}

	if depth >= maxDepth || len(targets) < 2*minLeaf {
		return leaf
	}

	featureIdx, threshold, ok := bestVarianceSplit(features, targets, minLeaf)
	if !ok {
		return leaf
	}

	leftX, leftY, rightX, rightY := partition(features, targets, featureIdx, threshold)
	if len(leftY) == 0 || len(rightY) == 0 {
		return leaf
	}

	leftNodes := buildTreeNode(leftX, leftY, depth+1, maxDepth, minLeaf)
	rightNodes := buildTreeNode(rightX, rightY, depth+1, maxDepth, minLeaf)

	// Subtrees are built with indexes relative to their own slice; rebase them
	// to their placement in the parent's flat array.
	leftOffset := 1
	rightOffset := 1 + len(leftNodes)
	rebaseChildren(leftNodes, leftOffset)
	rebaseChildren(rightNodes, rightOffset)

	root := treeNode{
		FeatureIdx: featureIdx,
		Threshold:  threshold,
		LeftChild:  leftOffset,
		RightChild: rightOffset,
		Value:      value,
	}

	nodes := make([]treeNode, 0, 1+len(leftNodes)+len(rightNodes))
	nodes = append(nodes, root)
	nodes = append(nodes, leftNodes...)
	nodes = append(nodes, rightNodes...)
	return nodes
}

func rebaseChildren(nodes []treeNode, offset int) {
	for i := range nodes {
		if nodes[i].IsLeaf {
			continue
		}
		nodes[i].LeftChild += offset
		nodes[i].RightChild += offset
	}
}

// bestVarianceSplit scans midpoints between adjacent distinct values of each
// feature and keeps the split with the lowest weighted sum of squared errors.
func bestVarianceSplit(features [][]float64, targets []float64, minLeaf int) (int, float64, bool) {
	n := len(targets)
	width := len(features[0])

	bestFeature := -1
	bestThreshold := 0.0
	bestScore := math.MaxFloat64

	order := make([]int, n)
	for featureIdx := 0; featureIdx < width; featureIdx++ {
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(a, b int) bool {
			return features[order[a]][featureIdx] < features[order[b]][featureIdx]
		})

		// Prefix sums over the sorted order let each candidate split score in
		// constant time.
		prefixSum := 0.0
		prefixSqSum := 0.0
		totalSum := 0.0
		totalSqSum := 0.0
		for _, i := range order {
			totalSum += targets[i]
			totalSqSum += targets[i] * targets[i]
		}

		for pos := 0; pos < n-1; pos++ {
			y := targets[order[pos]]
			prefixSum += y
			prefixSqSum += y * y

			cur := features[order[pos]][featureIdx]
			next := features[order[pos+1]][featureIdx]
			if cur == next {
				continue
			}
			leftCount := pos + 1
			rightCount := n - leftCount
			if leftCount < minLeaf || rightCount < minLeaf {
				continue
			}

			leftSSE := prefixSqSum - prefixSum*prefixSum/float64(leftCount)
			rightSum := totalSum - prefixSum
			rightSSE := (totalSqSum - prefixSqSum) - rightSum*rightSum/float64(rightCount)

			score := leftSSE + rightSSE
			if score < bestScore {
				bestScore = score
				bestFeature = featureIdx
				bestThreshold = (cur + next) / 2
			}
		}
	}

	if bestFeature == -1 {
		return -1, 0, false
	}
	return bestFeature, bestThreshold, true
}

func partition(features [][]float64, targets []float64, featureIdx int, threshold float64) ([][]float64, []float64, [][]float64, []float64) {
	leftX := make([][]float64, 0, len(targets))
	leftY := make([]float64, 0, len(targets))
	rightX := make([][]float64, 0, len(targets))
	rightY := make([]float64, 0, len(targets))
	for i, row := range features {
		if row[featureIdx] <= threshold {
			leftX = append(leftX, row)
			leftY = append(leftY, targets[i])
		} else {
			rightX = append(rightX, row)
			rightY = append(rightY, targets[i])
		}
	}
	return leftX, leftY, rightX, rightY
}

func (t regressionTree) predict(features []float64) (float64, error) {
	if len(t.Nodes) == 0 {
		return 0, errors.New("tree not fitted")
	}
	idx := 0
	for {
		node := t.Nodes[idx]
		if node.IsLeaf {
			return node.Value, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return 0, errors.New("feature index out of range")
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(t.Nodes) {
			return 0, errors.New("invalid tree state")
		}
	}
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
