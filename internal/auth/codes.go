package auth

import (
	"context"
	"crypto/rand"
	"io"

	"github.com/goliatone/go-errors"

	"github.com/potatophant/magnifier/internal/logging"
	"github.com/potatophant/magnifier/internal/repository"
)

// codeAlphabet excludes vowels so codes do not form real words. 21 consonant
// letters in both cases, 42 symbols total.
const codeAlphabet = "BCDFGHJKLMNPQRSTVWXYZbcdfghjklmnpqrstvwxyz"

// DefaultCodeLength yields 42^36 possible codes.
const DefaultCodeLength = 36

// CodeGenerator produces one-time codes and registers them as pending.
// Uniqueness is entropy-based; no collision check is performed against
// outstanding codes.
type CodeGenerator struct {
	codes  repository.AuthCodes
	length int
	rand   io.Reader
	logger logging.Logger
}

type CodeGeneratorOption func(*CodeGenerator)

// WithCodeLength overrides the generated code length.
func WithCodeLength(length int) CodeGeneratorOption {
	return func(g *CodeGenerator) {
		if length > 0 {
			g.length = length
		}
	}
}

// WithRandSource overrides the random source. The default is the shared
// crypto/rand reader, which is safe for concurrent use.
func WithRandSource(r io.Reader) CodeGeneratorOption {
	return func(g *CodeGenerator) {
		if r != nil {
			g.rand = r
		}
	}
}

func WithCodeLogger(logger logging.Logger) CodeGeneratorOption {
	return func(g *CodeGenerator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

func NewCodeGenerator(codes repository.AuthCodes, opts ...CodeGeneratorOption) *CodeGenerator {
	g := &CodeGenerator{
		codes:  codes,
		length: DefaultCodeLength,
		rand:   rand.Reader,
		logger: logging.DefLogger{},
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Generate draws a fresh code, stores it as pending, and returns it.
func (g *CodeGenerator) Generate(ctx context.Context) (string, error) {
	code, err := randomCode(g.rand, g.length)
	if err != nil {
		g.logger.Error("code generation failed", "error", err)
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to generate auth code")
	}

	if _, err := g.codes.Create(ctx, code); err != nil {
		g.logger.Error("failed to register pending auth code", "error", err)
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to register auth code")
	}

	return code, nil
}

// randomCode draws n symbols uniformly from codeAlphabet. Bytes at or above
// the largest multiple of the alphabet size are discarded to avoid modulo
// bias.
func randomCode(r io.Reader, n int) (string, error) {
	const limit = byte(252) // 6 * len(codeAlphabet)

	out := make([]byte, 0, n)
	buf := make([]byte, n)

	for len(out) < n {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", err
		}

		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(out) == n {
				break
			}
		}
	}

	return string(out), nil
}
