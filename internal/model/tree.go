package model

import "sort"

// treeNode is one node of a regression tree. Leaves carry the mean target of
// the rows they cover; internal nodes route on feature <= threshold.
type treeNode struct {
	leaf      bool
	value     float64
	feature   int // column index into the full feature matrix
	threshold float64
	left      *treeNode
	right     *treeNode
}

// regressionTree is a CART-style least-squares tree over a row and column
// subsample of the training matrix.
type regressionTree struct {
	root *treeNode
}

// buildTree grows a tree greedily to maxDepth. rows are indices into x/y;
// cols are the candidate feature indices for this tree. featureGain
// accumulates the squared-error reduction attributed to each feature, which
// is the basis of the ensemble's importance ranking.
func buildTree(x [][]float64, y []float64, rows, cols []int, maxDepth, minLeaf int, featureGain []float64) *regressionTree {
	return &regressionTree{root: growNode(x, y, rows, cols, maxDepth, minLeaf, featureGain)}
}

func growNode(x [][]float64, y []float64, rows, cols []int, depth, minLeaf int, featureGain []float64) *treeNode {
	sum, sumSq := 0.0, 0.0
	for _, r := range rows {
		sum += y[r]
		sumSq += y[r] * y[r]
	}
	n := float64(len(rows))
	mean := sum / n
	sse := sumSq - sum*sum/n

	node := &treeNode{leaf: true, value: mean}
	if depth <= 0 || len(rows) < 2*minLeaf || sse <= 1e-12 {
		return node
	}

	bestGain := 0.0
	bestFeature := -1
	bestThreshold := 0.0
	var bestPos int
	var bestOrder []int

	for _, c := range cols {
		order := make([]int, len(rows))
		copy(order, rows)
		sort.Slice(order, func(i, j int) bool { return x[order[i]][c] < x[order[j]][c] })

		leftSum, leftSq := 0.0, 0.0
		for i := 0; i < len(order)-1; i++ {
			v := y[order[i]]
			leftSum += v
			leftSq += v * v

			// Split only between distinct feature values.
			if x[order[i]][c] == x[order[i+1]][c] {
				continue
			}
			nl := float64(i + 1)
			nr := n - nl
			if int(nl) < minLeaf || int(nr) < minLeaf {
				continue
			}

			rightSum := sum - leftSum
			rightSq := sumSq - leftSq
			leftSSE := leftSq - leftSum*leftSum/nl
			rightSSE := rightSq - rightSum*rightSum/nr
			gain := sse - leftSSE - rightSSE
			if gain > bestGain {
				bestGain = gain
				bestFeature = c
				bestThreshold = (x[order[i]][c] + x[order[i+1]][c]) / 2
				bestPos = i + 1
				bestOrder = order
			}
		}
	}

	if bestFeature < 0 {
		return node
	}

	featureGain[bestFeature] += bestGain

	leftRows := append([]int(nil), bestOrder[:bestPos]...)
	rightRows := append([]int(nil), bestOrder[bestPos:]...)

	node.leaf = false
	node.feature = bestFeature
	node.threshold = bestThreshold
	node.left = growNode(x, y, leftRows, cols, depth-1, minLeaf, featureGain)
	node.right = growNode(x, y, rightRows, cols, depth-1, minLeaf, featureGain)
	return node
}

// predict routes one feature vector to its leaf value.
func (t *regressionTree) predict(row []float64) float64 {
	node := t.root
	for !node.leaf {
		if row[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}
