package explain

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/zombar/newscred/internal/classifier"
	"github.com/zombar/newscred/internal/models"
)

const (
	defaultSamples  = 2000
	defaultFeatures = 10
	defaultSeed     = 42

	// maxWorkers bounds the perturbation re-classification pool.
	maxWorkers = 8

	kernelWidth = 25.0
	ridgeAlpha  = 1.0
)

// limeExplainer fits a local linear surrogate over token-masked variants of
// the document and reports the surrogate's coefficients as per-token
// importance, signed toward the predicted class.
type limeExplainer struct {
	clf     *classifier.Classifier
	samples int
}

func (l *limeExplainer) explain(ctx context.Context, text string, numFeatures int, seed int64) (*models.Explanation, error) {
	tokens := l.clf.Preprocess(text)
	vocab := distinctTokens(tokens)
	if len(vocab) == 0 {
		return nil, fmt.Errorf("no tokens survive preprocessing")
	}

	probs := l.clf.ProbaTokens(tokens)
	class, prob := winner(probs, l.clf.Classes())

	// Masks come from a single seeded source so explanations reproduce
	// regardless of how the classification work is scheduled.
	masks := sampleMasks(rand.New(rand.NewSource(seed)), l.samples, len(vocab))
	ys, err := l.classifyMasked(ctx, tokens, vocab, masks, class)
	if err != nil {
		return nil, err
	}

	coefs, _, err := fitRidge(masks, ys, kernelWeights(masks), ridgeAlpha)
	if err != nil {
		return nil, err
	}

	features := make([]models.TokenWeight, len(vocab))
	for i, tok := range vocab {
		features[i] = models.TokenWeight{Token: tok, Importance: coefs[i]}
	}
	return buildExplanation(models.MethodLime, class, prob, 0, sortFeatures(features, numFeatures)), nil
}

// classifyMasked scores every masked variant of the document. Workers stride
// over disjoint indices of the result slice, so no locking is needed.
func (l *limeExplainer) classifyMasked(ctx context.Context, tokens, vocab []string, masks [][]float64, class string) ([]float64, error) {
	column := make(map[string]int, len(vocab))
	for i, tok := range vocab {
		column[tok] = i
	}

	ys := make([]float64, len(masks))
	workers := maxWorkers
	if len(masks) < workers {
		workers = len(masks)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(start int) {
			defer wg.Done()
			masked := make([]string, 0, len(tokens))
			for i := start; i < len(masks); i += workers {
				if ctx.Err() != nil {
					return
				}
				masked = masked[:0]
				for _, tok := range tokens {
					if masks[i][column[tok]] == 1 {
						masked = append(masked, tok)
					}
				}
				ys[i] = l.clf.ProbaTokens(masked)[class]
			}
		}(w)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ys, nil
}

// sampleMasks draws n binary masks over d distinct tokens. The first mask is
// the unperturbed document; every other mask deactivates between 1 and d
// tokens chosen uniformly.
func sampleMasks(rng *rand.Rand, n, d int) [][]float64 {
	masks := make([][]float64, n)
	for i := range masks {
		mask := make([]float64, d)
		for j := range mask {
			mask[j] = 1
		}
		if i > 0 {
			inactive := 1 + rng.Intn(d)
			for _, j := range rng.Perm(d)[:inactive] {
				mask[j] = 0
			}
		}
		masks[i] = mask
	}
	return masks
}

// kernelWeights scores each sample by proximity to the full document with an
// exponential kernel over cosine distance. The unperturbed mask weighs 1.
func kernelWeights(masks [][]float64) []float64 {
	weights := make([]float64, len(masks))
	d := float64(len(masks[0]))
	for i, mask := range masks {
		var active float64
		for _, v := range mask {
			active += v
		}
		dist := 100 * (1 - math.Sqrt(active/d))
		weights[i] = math.Sqrt(math.Exp(-dist * dist / (kernelWidth * kernelWidth)))
	}
	return weights
}

// fitRidge solves a weighted ridge regression with an unpenalized intercept
// via the normal equations. It returns the feature coefficients and the
// intercept.
func fitRidge(x [][]float64, y, w []float64, alpha float64) ([]float64, float64, error) {
	n := len(x)
	if n == 0 || n != len(y) || n != len(w) {
		return nil, 0, fmt.Errorf("ridge: inconsistent sample counts")
	}
	d := len(x[0])
	m := d + 1 // bias column appended last

	a := make([][]float64, m)
	for i := range a {
		a[i] = make([]float64, m)
	}
	b := make([]float64, m)
	for s := 0; s < n; s++ {
		row := x[s]
		ws := w[s]
		for i := 0; i < m; i++ {
			xi := 1.0
			if i < d {
				xi = row[i]
			}
			if xi == 0 {
				continue
			}
			wxi := ws * xi
			for j := i; j < m; j++ {
				xj := 1.0
				if j < d {
					xj = row[j]
				}
				a[i][j] += wxi * xj
			}
			b[i] += wxi * y[s]
		}
	}
	for i := 0; i < d; i++ {
		a[i][i] += alpha
	}
	for i := 1; i < m; i++ {
		for j := 0; j < i; j++ {
			a[i][j] = a[j][i]
		}
	}

	solved, err := solveGaussian(a, b)
	if err != nil {
		return nil, 0, err
	}
	return solved[:d], solved[d], nil
}

// solveGaussian solves a dense linear system in place with partial pivoting.
func solveGaussian(a [][]float64, b []float64) ([]float64, error) {
	m := len(a)
	for col := 0; col < m; col++ {
		pivot := col
		for r := col + 1; r < m; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, fmt.Errorf("ridge: singular system")
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for r := col + 1; r < m; r++ {
			f := a[r][col] / a[col][col]
			if f == 0 {
				continue
			}
			for c := col; c < m; c++ {
				a[r][c] -= f * a[col][c]
			}
			b[r] -= f * b[col]
		}
	}

	out := make([]float64, m)
	for r := m - 1; r >= 0; r-- {
		sum := b[r]
		for c := r + 1; c < m; c++ {
			sum -= a[r][c] * out[c]
		}
		out[r] = sum / a[r][r]
	}
	return out, nil
}

func distinctTokens(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := []string{}
	for _, tok := range tokens {
		if !seen[tok] {
			seen[tok] = true
			out = append(out, tok)
		}
	}
	return out
}

func winner(probs map[string]float64, classes []string) (string, float64) {
	class, best := classes[0], probs[classes[0]]
	for _, c := range classes[1:] {
		if probs[c] > best {
			class, best = c, probs[c]
		}
	}
	return class, best
}
