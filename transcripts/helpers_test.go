package transcripts

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/kbukum/audiodesk/auth"
	"github.com/kbukum/audiodesk/database"
	"github.com/kbukum/audiodesk/flash"
	"github.com/kbukum/audiodesk/logger"
	"github.com/kbukum/audiodesk/observability"
	"github.com/kbukum/audiodesk/storage/local"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testUser = "user-1"

// withSession signs every request in as userID with the User role.
func withSession(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := &auth.SessionClaims{UserID: userID, Roles: []string{auth.RoleUser}}
		c.Request = c.Request.WithContext(auth.WithSession(c.Request.Context(), claims))
		c.Next()
	}
}

type renderCall struct {
	status int
	name   string
	data   any
}

type recordingRenderer struct {
	calls []renderCall
	err   error
}

func (r *recordingRenderer) Render(c *gin.Context, status int, name string, data any) error {
	r.calls = append(r.calls, renderCall{status: status, name: name, data: data})
	if r.err != nil {
		return r.err
	}
	c.String(status, "rendered "+name)
	return nil
}

type memoryFlashes struct {
	notices []flash.Notice
	err     error
}

func (f *memoryFlashes) Add(_ *gin.Context, n flash.Notice) error {
	if f.err != nil {
		return f.err
	}
	f.notices = append(f.notices, n)
	return nil
}

func (f *memoryFlashes) Pop(_ *gin.Context) ([]flash.Notice, error) {
	out := f.notices
	f.notices = nil
	return out, nil
}

func newTestMetrics(t *testing.T) (*observability.Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := observability.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func counterByAttr(t *testing.T, reader *sdkmetric.ManualReader, name, key string) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	out := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if md.Name != name {
				continue
			}
			sum, ok := md.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("%s is %T, not an int64 sum", name, md.Data)
			}
			for _, dp := range sum.DataPoints {
				v, _ := dp.Attributes.Value(attribute.Key(key))
				out[v.AsString()] += dp.Value
			}
		}
	}
	return out
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, database.Config{
		DSN:      fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")),
		LogLevel: "silent",
	}, logger.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.AutoMigrate(Models()...); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	return db
}

func newTestBlobs(t *testing.T) *local.Storage {
	t.Helper()
	s, err := local.NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	return s
}
