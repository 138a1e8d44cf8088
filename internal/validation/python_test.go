package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/vizgen-cli/internal/config"
)

const validProgram = `import pygame

pygame.init()
screen = pygame.display.set_mode((640, 480))
clock = pygame.time.Clock()
x, dx = 0, 4

running = True
while running:
    for event in pygame.event.get():
        if event.type == pygame.QUIT:
            running = False
    x = (x + dx) % 640
    screen.fill((0, 0, 0))
    pygame.draw.circle(screen, (255, 0, 0), (x, 240), 20)
    pygame.display.flip()
    clock.tick(60)

pygame.quit()
`

const brokenProgram = `import pygame

def draw(screen:
    pygame.draw.rect(screen, (0, 0, 255), (10, 10, 50, 50))
`

func TestParse(t *testing.T) {
	diag, err := Parse(context.Background(), validProgram)
	require.NoError(t, err)
	assert.Nil(t, diag)

	diag, err = Parse(context.Background(), brokenProgram)
	require.NoError(t, err)
	require.NotNil(t, diag)
	assert.GreaterOrEqual(t, diag.Line, 3)
	assert.NotEmpty(t, diag.String())
}

func TestParse_EmptyProgram(t *testing.T) {
	diag, err := Parse(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, diag)
}

func TestValidator_Modes(t *testing.T) {
	logger := zaptest.NewLogger(t)

	t.Run("off skips parsing", func(t *testing.T) {
		v := NewValidator(config.ValidationOff, logger)
		diag, err := v.Check(context.Background(), brokenProgram)
		assert.NoError(t, err)
		assert.Nil(t, diag)
	})

	t.Run("warn reports without failing", func(t *testing.T) {
		v := NewValidator(config.ValidationWarn, logger)
		diag, err := v.Check(context.Background(), brokenProgram)
		assert.NoError(t, err)
		assert.NotNil(t, diag)
	})

	t.Run("strict rejects", func(t *testing.T) {
		v := NewValidator(config.ValidationStrict, logger)
		diag, err := v.Check(context.Background(), brokenProgram)
		assert.ErrorIs(t, err, ErrSyntax)
		assert.NotNil(t, diag)

		diag, err = v.Check(context.Background(), validProgram)
		assert.NoError(t, err)
		assert.Nil(t, diag)
	})

	t.Run("empty mode defaults to warn", func(t *testing.T) {
		assert.Equal(t, config.ValidationWarn, NewValidator("", logger).Mode())
	})
}
