package ws

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openrange/backend/internal/flight"
	"github.com/openrange/backend/internal/metrics"
	"github.com/openrange/backend/internal/physics"
	"github.com/openrange/backend/internal/shots"
)

// Frame is one paced snapshot of a streamed shot.
type Frame struct {
	Type  string        `json:"type"`
	T     float64       `json:"t"`
	X     float64       `json:"x"`
	Y     float64       `json:"y"`
	Z     float64       `json:"z"`
	Phase physics.Phase `json:"phase"`
	Speed float64       `json:"speed"`
	Spin  float64       `json:"spin"`
}

func frameOf(sim *flight.Simulator) Frame {
	p := sim.State.Position
	return Frame{
		Type:  "frame",
		T:     sim.Time(),
		X:     p.X(),
		Y:     p.Y(),
		Z:     p.Z(),
		Phase: sim.State.Phase,
		Speed: sim.State.Velocity.Len(),
		Spin:  physics.RPM(sim.State.Omega),
	}
}

// Play steps sim to completion, emitting a frame every 1/frameHz of simulated
// time. When pace is true it sleeps between frames so the shot plays in real
// time. mu, if not nil, is held while the simulator is stepped. Play returns
// early with ctx.Err() when ctx is cancelled.
func Play(ctx context.Context, sim *flight.Simulator, frameHz int, pace bool, mu sync.Locker, emit func(Frame)) error {
	if frameHz <= 0 {
		frameHz = 60
	}
	interval := 1.0 / float64(frameHz)

	var tick <-chan time.Time
	if pace {
		ticker := time.NewTicker(time.Duration(interval * float64(time.Second)))
		defer ticker.Stop()
		tick = ticker.C
	}

	if mu == nil {
		mu = noLock{}
	}

	mu.Lock()
	f, done := frameOf(sim), sim.Done()
	mu.Unlock()
	emit(f)

	for !done {
		if pace {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		mu.Lock()
		target := sim.Time() + interval
		for !sim.Done() && sim.Time()+1e-9 < target {
			sim.Step()
		}
		f, done = frameOf(sim), sim.Done()
		mu.Unlock()
		emit(f)
	}
	return nil
}

type noLock struct{}

func (noLock) Lock()   {}
func (noLock) Unlock() {}

// streamRun is one shot and the plan it runs under. Reinjected conditions
// update plan in place so the result reports what the ball actually saw.
type streamRun struct {
	sim  *flight.Simulator
	plan shots.Plan
}

// streamSession holds the shot currently playing for one client.
type streamSession struct {
	client *Client
	svc    *shots.Service

	mu     sync.Mutex
	run    *streamRun
	cancel context.CancelFunc
}

// HandleStream upgrades an interactive connection. Clients send
// {"type":"simulate","data":<shot request>} and receive paced frames followed
// by a result; {"type":"environment","data":<request>} swaps conditions
// mid-flight and {"type":"cancel"} stops playback.
func HandleStream(hub *Hub, svc *shots.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WS] Upgrade error: %v", err)
			return
		}
		client := &Client{
			hub:  hub,
			conn: conn,
			id:   shots.NewToken("c"),
			room: "stream",
			send: make(chan []byte, sendBuffer),
		}
		sess := &streamSession{client: client, svc: svc}

		hub.register <- client
		go client.writePump()
		go func() {
			client.readPump(sess.handle)
			sess.stop()
		}()
	}
}

func (s *streamSession) reply(msg interface{}) {
	s.client.hub.Send(s.client.id, msg)
}

func (s *streamSession) handle(msg WSMessage) {
	switch msg.Type {
	case "simulate":
		var req shots.Request
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			s.reply(errorMessage("invalid shot data"))
			return
		}
		s.start(req)

	case "environment":
		var req shots.Request
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			s.reply(errorMessage("invalid environment data"))
			return
		}
		s.reinject(req)

	case "cancel":
		s.stop()
		s.reply(map[string]interface{}{"type": "cancelled"})

	default:
		s.reply(errorMessage("unknown message type"))
	}
}

func (s *streamSession) start(req shots.Request) {
	plan, err := req.Resolve(s.svc.Cfg.Conditions())
	if err != nil {
		s.reply(errorMessage(err.Error()))
		return
	}
	sim, err := flight.NewSimulator(plan.Shot, plan.Params, plan.Options)
	if err != nil {
		s.reply(errorMessage(err.Error()))
		return
	}

	s.stop()
	ctx, cancel := context.WithCancel(context.Background())
	run := &streamRun{sim: sim, plan: plan}
	s.mu.Lock()
	s.run, s.cancel = run, cancel
	s.mu.Unlock()

	s.reply(map[string]interface{}{"type": "launch", "spin": plan.Shot.Spin(), "surface": plan.Surface})
	go s.play(ctx, run)
}

func (s *streamSession) play(ctx context.Context, run *streamRun) {
	start := time.Now()
	if err := Play(ctx, run.sim, s.svc.Cfg.StreamFrameHz, true, &s.mu, func(f Frame) { s.reply(f) }); err != nil {
		return
	}

	out, plan := s.outcome(run)
	metrics.ObserveShot(string(plan.Surface), shots.SourceStream, out.Result, time.Since(start).Seconds())

	ctx = context.Background()
	if s.svc.DB != nil {
		if _, err := shots.Save(ctx, s.svc.DB, out.ShotToken, sql.NullInt64{}, sql.NullInt64{}, plan, out); err != nil {
			log.Printf("[WS] Failed to save streamed shot: %v", err)
		}
	}
	if err := shots.Publish(ctx, s.svc.RDB, out.ShotToken, shots.SourceStream, out); err != nil {
		log.Printf("[WS] Failed to publish streamed shot: %v", err)
	}
	s.reply(map[string]interface{}{"type": "result", "outcome": out.WithoutTrajectory()})
}

// outcome builds the result of run from its own plan. A newer shot started on
// the same session does not leak into it.
func (s *streamSession) outcome(run *streamRun) (shots.Outcome, shots.Plan) {
	s.mu.Lock()
	res := run.sim.Result()
	plan := run.plan
	s.mu.Unlock()

	return shots.Outcome{
		ShotToken:   shots.NewToken("s"),
		Surface:     plan.Surface,
		Environment: plan.Environment,
		Spin:        plan.Shot.Spin(),
		Summary:     res.Summary(plan.Unit),
		Result:      res,
	}, plan
}

// reinject applies new conditions to the shot in flight. Only the
// environment and surface of req are used.
func (s *streamSession) reinject(req shots.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run := s.run
	if run == nil || run.sim.Done() {
		s.reply(errorMessage("no shot in flight"))
		return
	}

	req.Shot = run.plan.Shot
	plan, err := req.Resolve(s.svc.Cfg.Conditions())
	if err != nil {
		s.reply(errorMessage(err.Error()))
		return
	}
	if err := run.sim.Reinject(plan.Params); err != nil {
		s.reply(errorMessage(err.Error()))
		return
	}
	run.plan.Surface, run.plan.Environment, run.plan.Params = plan.Surface, plan.Environment, plan.Params
	s.reply(map[string]interface{}{"type": "environment_applied", "t": run.sim.Time(), "surface": plan.Surface})
}

func (s *streamSession) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
