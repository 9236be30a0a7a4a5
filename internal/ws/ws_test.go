package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/openrange/backend/internal/config"
	"github.com/openrange/backend/internal/flight"
	"github.com/openrange/backend/internal/launch"
	"github.com/openrange/backend/internal/physics"
	"github.com/openrange/backend/internal/shots"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testSim(t *testing.T) *flight.Simulator {
	t.Helper()
	p, err := physics.NewParams(physics.DefaultEnvironment(), physics.SurfaceFairway)
	if err != nil {
		t.Fatalf("NewParams: %v", err)
	}
	shot := launch.Shot{Speed: 100, VLA: 22, TotalSpin: launch.Float(6000)}
	sim, err := flight.NewSimulator(shot, p, flight.DefaultOptions())
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}
	return sim
}

func TestPlayEmitsFramesAtInterval(t *testing.T) {
	sim := testSim(t)
	var frames []Frame
	if err := Play(context.Background(), sim, 30, false, nil, func(f Frame) { frames = append(frames, f) }); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if !sim.Done() {
		t.Fatal("simulation should be complete")
	}
	if len(frames) < 2 {
		t.Fatalf("got %d frames", len(frames))
	}
	if frames[0].T != 0 || frames[0].Phase != physics.PhaseFlight {
		t.Errorf("first frame = %+v", frames[0])
	}
	last := frames[len(frames)-1]
	if last.Phase != physics.PhaseRest {
		t.Errorf("last frame phase = %s", last.Phase)
	}
	for i := 1; i < len(frames)-1; i++ {
		dt := frames[i].T - frames[i-1].T
		if dt < 1.0/30-1e-6 || dt > 1.0/30+flight.DefaultTimestep {
			t.Fatalf("frame %d spacing %.4f s", i, dt)
		}
	}
	if res := sim.Result(); last.X != res.FinalPos.X() {
		t.Errorf("last frame x %.2f != final x %.2f", last.X, res.FinalPos.X())
	}
}

func TestPlayStopsOnCancel(t *testing.T) {
	sim := testSim(t)
	ctx, cancel := context.WithCancel(context.Background())
	n := 0
	err := Play(ctx, sim, 60, false, nil, func(Frame) {
		n++
		if n == 5 {
			cancel()
		}
	})
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if sim.Done() {
		t.Error("cancelled playback should leave the shot unfinished")
	}
}

func TestHubBroadcastAndSend(t *testing.T) {
	h := NewHub()
	go h.Run()

	a := &Client{hub: h, id: "a", room: FeedRoom, send: make(chan []byte, 4)}
	b := &Client{hub: h, id: "b", room: "other", send: make(chan []byte, 4)}
	h.register <- a
	h.register <- b

	deadline := time.Now().Add(time.Second)
	for h.RoomSize(FeedRoom) != 1 || h.RoomSize("other") != 1 {
		if time.Now().After(deadline) {
			t.Fatal("clients not registered")
		}
		time.Sleep(time.Millisecond)
	}

	h.Broadcast(FeedRoom, map[string]string{"type": "shot_completed"})
	select {
	case msg := <-a.send:
		if !strings.Contains(string(msg), "shot_completed") {
			t.Errorf("unexpected message %s", msg)
		}
	default:
		t.Error("feed client got nothing")
	}
	if len(b.send) != 0 {
		t.Error("broadcast leaked to another room")
	}

	if !h.Send("b", map[string]string{"type": "hello"}) {
		t.Error("Send to b failed")
	}
	if h.Send("missing", map[string]string{"type": "hello"}) {
		t.Error("Send to unknown client should fail")
	}

	h.unregister <- a
	deadline = time.Now().Add(time.Second)
	for h.RoomSize(FeedRoom) != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client not unregistered")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestStreamSimulatesShot(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	cfg := &config.Config{
		Temperature: 59, EnvUnits: "imperial", DefaultSurface: "fairway", DistanceUnit: "meters",
		TimestepHz: 240, MaxSimSeconds: 60, RestSpeed: 0.05, SpinMemory: true, StreamFrameHz: 100,
	}
	svc := shots.NewService(nil, nil, cfg)

	r := gin.New()
	r.GET("/stream", HandleStream(hub, svc))
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/stream", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]interface{}{"type": "bogus"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	// A bump-and-run into rough settles in about five seconds of real-time playback.
	req := shots.Request{Shot: launch.Shot{Speed: 40, VLA: 5, BackSpin: launch.Float(1000), SideSpin: launch.Float(0)}, Surface: "rough"}
	data, _ := json.Marshal(req)
	if err := conn.WriteJSON(map[string]interface{}{"type": "simulate", "data": json.RawMessage(data)}); err != nil {
		t.Fatalf("write: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(20 * time.Second))
	var sawError, sawLaunch bool
	frames := 0
	for {
		var msg map[string]json.RawMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v (frames=%d)", err, frames)
		}
		var typ string
		json.Unmarshal(msg["type"], &typ)
		switch typ {
		case "error":
			sawError = true
		case "launch":
			sawLaunch = true
		case "frame":
			frames++
		case "result":
			var out shots.Outcome
			if err := json.Unmarshal(msg["outcome"], &out); err != nil {
				t.Fatalf("decode outcome: %v", err)
			}
			if !sawError || !sawLaunch {
				t.Errorf("sawError=%v sawLaunch=%v", sawError, sawLaunch)
			}
			if frames < 10 {
				t.Errorf("only %d frames streamed", frames)
			}
			if out.Result.FinalPhase != physics.PhaseRest || out.Summary.Total <= 0 {
				t.Errorf("outcome = %+v", out.Summary)
			}
			return
		}
	}
}

func TestStreamOutcomeUsesItsOwnRun(t *testing.T) {
	cfg := &config.Config{
		Temperature: 59, EnvUnits: "imperial", DefaultSurface: "fairway", DistanceUnit: "meters",
		TimestepHz: 240, MaxSimSeconds: 60, RestSpeed: 0.05, SpinMemory: true, StreamFrameHz: 100,
	}
	sess := &streamSession{
		client: &Client{hub: NewHub(), id: "c", room: "stream", send: make(chan []byte, 8)},
		svc:    shots.NewService(nil, nil, cfg),
	}
	newRun := func(surface string) *streamRun {
		t.Helper()
		req := shots.Request{Shot: launch.Shot{Speed: 100, VLA: 22, TotalSpin: launch.Float(6000)}, Surface: surface}
		plan, err := req.Resolve(cfg.Conditions())
		if err != nil {
			t.Fatalf("Resolve(%s): %v", surface, err)
		}
		sim, err := flight.NewSimulator(plan.Shot, plan.Params, plan.Options)
		if err != nil {
			t.Fatalf("NewSimulator: %v", err)
		}
		return &streamRun{sim: sim, plan: plan}
	}

	first := newRun("fairway")
	sess.run = first
	sess.reinject(shots.Request{Surface: "rough"})
	if first.plan.Surface != physics.SurfaceRough {
		t.Fatalf("reinject left surface %s, want rough", first.plan.Surface)
	}

	// A new shot replaces the session run before the first one finishes.
	second := newRun("firm")
	sess.run = second
	if err := Play(context.Background(), first.sim, 30, false, nil, func(Frame) {}); err != nil {
		t.Fatalf("Play: %v", err)
	}

	out, plan := sess.outcome(first)
	if out.Surface != physics.SurfaceRough || plan.Surface != physics.SurfaceRough {
		t.Errorf("outcome surface = %s (plan %s), want rough", out.Surface, plan.Surface)
	}
	if out.Result.FinalPhase != physics.PhaseRest {
		t.Errorf("final phase = %s", out.Result.FinalPhase)
	}
	if second.plan.Surface != physics.SurfaceFirm {
		t.Errorf("second run surface = %s, want firm", second.plan.Surface)
	}
}
