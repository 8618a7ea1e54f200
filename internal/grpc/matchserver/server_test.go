package matchserver

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mitchelldurbincs/ManaSearch/internal/match"
	"github.com/mitchelldurbincs/ManaSearch/internal/testutil"
)

const (
	bufSize  = 1024 * 1024
	testDeck = "10 Mountain\n10 Goblin Piker"
)

// setupTestServer creates an in-memory gRPC server for testing
func setupTestServer(t *testing.T, maxMatches int) (MatchServiceClient, *Server) {
	lis := bufconn.Listen(bufSize)
	runner := match.NewRunner(match.RunnerConfig{}, testutil.NopLogger())
	srv := NewServer(runner, maxMatches, testutil.NopLogger())

	s := grpc.NewServer(ServerOptions(testutil.NopLogger())...)
	RegisterMatchServiceServer(s, srv)
	go func() {
		if err := s.Serve(lis); err != nil {
			t.Logf("Server exited with error: %v", err)
		}
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
			return lis.Dial()
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		s.Stop()
		lis.Close()
	})
	return NewMatchServiceClient(conn), srv
}

func request(t *testing.T, fields map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(fields)
	require.NoError(t, err)
	return s
}

func TestPlayMatch(t *testing.T) {
	client, srv := setupTestServer(t, 0)
	ctx := context.Background()

	resp, err := client.PlayMatch(ctx, request(t, map[string]any{
		"decklist_a": testDeck,
		"decklist_b": testDeck,
		"seed":       7,
	}))
	require.NoError(t, err)

	rec, err := match.RecordFromStruct(resp)
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, uint64(7), rec.Seed)
	assert.Equal(t, [2]match.PlayerKind{match.PlayerRandom, match.PlayerRandom}, rec.Players)
	assert.True(t, rec.Finished())
	assert.Positive(t, rec.Turns)
	assert.Equal(t, 0, srv.ActiveMatches())

	got, err := client.GetMatch(ctx, request(t, map[string]any{"match_id": rec.ID}))
	require.NoError(t, err)
	assert.Equal(t, resp.Fields["turns"].GetNumberValue(), got.Fields["turns"].GetNumberValue())
}

func TestPlayMatchMCTSSeat(t *testing.T) {
	client, _ := setupTestServer(t, 0)

	resp, err := client.PlayMatch(context.Background(), request(t, map[string]any{
		"decklist_a": testDeck,
		"decklist_b": testDeck,
		"player_a":   "mcts",
		"seed":       "18446744073709551000",
		"budget_ms":  2,
	}))
	require.NoError(t, err)
	assert.Equal(t, "mcts", resp.Fields["player_a"].GetStringValue())
	assert.Equal(t, "18446744073709551000", resp.Fields["seed"].GetStringValue())
}

func TestPlayMatchIdempotent(t *testing.T) {
	client, srv := setupTestServer(t, 0)
	ctx := context.Background()
	req := request(t, map[string]any{
		"request_id": "retry-1",
		"decklist_a": testDeck,
		"decklist_b": testDeck,
	})

	first, err := client.PlayMatch(ctx, req)
	require.NoError(t, err)
	second, err := client.PlayMatch(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, first.Fields["match_id"].GetStringValue(), second.Fields["match_id"].GetStringValue())
	assert.Equal(t, int64(1), srv.runner.Played())
}

func TestPlayMatchInvalidArguments(t *testing.T) {
	client, _ := setupTestServer(t, 0)

	tests := []struct {
		name   string
		fields map[string]any
	}{
		{"missing decklist", map[string]any{"decklist_a": testDeck}},
		{"unknown card", map[string]any{"decklist_a": testDeck, "decklist_b": "4 Black Lotus"}},
		{"malformed decklist", map[string]any{"decklist_a": testDeck, "decklist_b": "Mountain"}},
		{"unknown player", map[string]any{"decklist_a": testDeck, "decklist_b": testDeck, "player_b": "human"}},
		{"negative seed", map[string]any{"decklist_a": testDeck, "decklist_b": testDeck, "seed": -1}},
		{"fractional budget", map[string]any{"decklist_a": testDeck, "decklist_b": testDeck, "budget_ms": 1.5}},
		{"decklist not a string", map[string]any{"decklist_a": 3, "decklist_b": testDeck}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.PlayMatch(context.Background(), request(t, tt.fields))
			require.Error(t, err)
			assert.Equal(t, codes.InvalidArgument, status.Code(err), err.Error())
		})
	}
}

func TestGetMatchNotFound(t *testing.T) {
	client, _ := setupTestServer(t, 0)

	_, err := client.GetMatch(context.Background(), request(t, map[string]any{"match_id": "nope"}))
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.GetMatch(context.Background(), request(t, map[string]any{}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestListMatches(t *testing.T) {
	client, _ := setupTestServer(t, 0)
	ctx := context.Background()

	for seed := 1; seed <= 3; seed++ {
		_, err := client.PlayMatch(ctx, request(t, map[string]any{
			"decklist_a": testDeck,
			"decklist_b": testDeck,
			"seed":       seed,
		}))
		require.NoError(t, err)
	}

	resp, err := client.ListMatches(ctx, request(t, map[string]any{}))
	require.NoError(t, err)
	assert.Equal(t, float64(3), resp.Fields["count"].GetNumberValue())
	matches := resp.Fields["matches"].GetListValue().GetValues()
	require.Len(t, matches, 3)
	_, err = match.RecordFromStruct(matches[0].GetStructValue())
	assert.NoError(t, err)

	resp, err = client.ListMatches(ctx, request(t, map[string]any{"limit": 2}))
	require.NoError(t, err)
	assert.Len(t, resp.Fields["matches"].GetListValue().GetValues(), 2)
}

func TestPlan(t *testing.T) {
	client, _ := setupTestServer(t, 0)

	resp, err := client.Plan(context.Background(), request(t, map[string]any{
		"decklist_a": testDeck,
		"decklist_b": testDeck,
		"seed":       11,
		"budget_ms":  20,
	}))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Fields["action"].GetStringValue())
	assert.NotEmpty(t, resp.Fields["kind"].GetStringValue())
	assert.Contains(t, []float64{0, 1}, resp.Fields["seat"].GetNumberValue())

	_, err = client.Plan(context.Background(), request(t, map[string]any{"decklist_a": testDeck}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestMaxMatchesLimit(t *testing.T) {
	client, srv := setupTestServer(t, 2)

	require.NoError(t, srv.acquire())
	require.NoError(t, srv.acquire())
	assert.Equal(t, 2, srv.ActiveMatches())

	_, err := client.PlayMatch(context.Background(), request(t, map[string]any{
		"decklist_a": testDeck,
		"decklist_b": testDeck,
	}))
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))

	srv.release()
	_, err = client.PlayMatch(context.Background(), request(t, map[string]any{
		"decklist_a": testDeck,
		"decklist_b": testDeck,
	}))
	assert.NoError(t, err)
	assert.Equal(t, 1, srv.ActiveMatches())
}

func TestMaxMatchesZeroMeansUnlimited(t *testing.T) {
	srv := NewServer(match.NewRunner(match.RunnerConfig{}, testutil.NopLogger()), 0, testutil.NopLogger())
	for i := 0; i < 50; i++ {
		require.NoError(t, srv.acquire())
	}
	assert.Equal(t, 50, srv.ActiveMatches())
}

func TestRecoveryInterceptor(t *testing.T) {
	interceptor := RecoveryInterceptor(testutil.NopLogger())
	info := &grpc.UnaryServerInfo{FullMethod: MatchService_Plan_FullMethodName}

	_, err := interceptor(context.Background(), nil, info, func(context.Context, interface{}) (interface{}, error) {
		panic("boom")
	})
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestIdempotencyCache(t *testing.T) {
	cache := NewIdempotencyCache()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	resp := request(t, map[string]any{"match_id": "m"})
	cache.Store("", resp)
	assert.Zero(t, cache.Len())
	assert.Nil(t, cache.Check(""))

	cache.Store("k", resp)
	got := cache.Check("k")
	require.NotNil(t, got)
	got.Fields["match_id"] = structpb.NewStringValue("changed")
	assert.Equal(t, "m", cache.Check("k").Fields["match_id"].GetStringValue(), "callers get copies")

	now = now.Add(25 * time.Hour)
	assert.Nil(t, cache.Check("k"), "entries expire")
}

func TestToStatus(t *testing.T) {
	assert.NoError(t, toStatus(nil))
	assert.Equal(t, codes.NotFound, status.Code(toStatus(match.ErrNotFound)))
	assert.Equal(t, codes.Canceled, status.Code(toStatus(context.Canceled)))
	assert.Equal(t, codes.Internal, status.Code(toStatus(assert.AnError)))
	passthrough := status.Error(codes.Aborted, "x")
	assert.Equal(t, passthrough, toStatus(passthrough))
}
