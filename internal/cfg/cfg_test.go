package cfg

import (
	"testing"
	"time"

	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("POSTGRES_USER", "store")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "store")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	c, err := Load(logger.NewNopLogger())
	require.NoError(t, err)

	assert.Equal(t, "8080", c.Http.Port)
	assert.Equal(t, "storefront.orders", c.Kafka.Topic)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, c.Kafka.Brokers)
	assert.Equal(t, 24*time.Hour, c.Auth.TokenTTL)
	assert.Empty(t, c.Auth.BootstrapAdmins)
	assert.Equal(t, "http://minio:9000", c.Minio.PublicURL)
	assert.Equal(t, 3*time.Second, c.Redis.Timeout)
}

func TestLoad_BootstrapAdminsLowercased(t *testing.T) {
	setRequired(t)
	t.Setenv("BOOTSTRAP_ADMIN_EMAILS", "Owner@Shop.io , ops@shop.io")

	c, err := Load(logger.NewNopLogger())
	require.NoError(t, err)

	assert.Equal(t, []string{"owner@shop.io", "ops@shop.io"}, c.Auth.BootstrapAdmins)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"short jwt secret", "JWT_SECRET", "short"},
		{"missing brokers", "KAFKA_BROKERS", ""},
		{"bad duration", "JWT_TTL", "tomorrow"},
		{"bad int", "BCRYPT_COST", "ten"},
		{"missing db user", "POSTGRES_USER", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load(logger.NewNopLogger())
			assert.Error(t, err)
		})
	}
}
