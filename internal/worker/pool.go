package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cajaflow/internal/infra"
	"cajaflow/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const QueueNotificaciones = "jobs:notificaciones"

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// NotificacionCierre is the payload announcing a cierre awaiting review.
type NotificacionCierre struct {
	CierreID   string `json:"cierre_id"`
	CajaID     string `json:"caja_id"`
	UsuarioID  string `json:"usuario_id"`
	Diferencia string `json:"diferencia"`
}

// Dispatcher enqueues async jobs into Redis lists. The worker pool
// dequeues them via BRPOP. Implements service.NotificadorCierres.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// NotificarCierrePendiente pushes a review notification to Redis.
// Best-effort by contract: the caller logs and swallows failures.
func (d *Dispatcher) NotificarCierrePendiente(ctx context.Context, cierre *model.CierreCaja) error {
	return d.enqueue(ctx, QueueNotificaciones, "cierre_pendiente", NotificacionCierre{
		CierreID:   cierre.ID.String(),
		CajaID:     cierre.CajaID.String(),
		UsuarioID:  cierre.UsuarioID.String(),
		Diferencia: cierre.Diferencia.String(),
	})
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// NotificacionWorker delivers queued notifications to the supervisors'
// inbox via the SMTP mailer.
type NotificacionWorker struct {
	mailer       *infra.Mailer
	destinatario string
}

func NewNotificacionWorker(mailer *infra.Mailer, destinatario string) *NotificacionWorker {
	return &NotificacionWorker{mailer: mailer, destinatario: destinatario}
}

func (w *NotificacionWorker) Handle(job Job) error {
	var n NotificacionCierre
	if err := json.Unmarshal(job.Payload, &n); err != nil {
		return err
	}
	subject := "Cierre de caja pendiente de aprobación"
	body := fmt.Sprintf(
		"Cierre %s (caja %s, usuario %s) espera revisión. Diferencia declarada: %s.",
		n.CierreID, n.CajaID, n.UsuarioID, n.Diferencia,
	)
	return w.mailer.SendNotificacion(w.destinatario, subject, body)
}

// StartWorkerPool launches numWorkers goroutines consuming the
// notification queue. Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handler *NotificacionWorker, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handler, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handler *NotificacionWorker, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, QueueNotificaciones).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(handler, result[1])
		}
	}
}

func processJob(handler *NotificacionWorker, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Err(err).Msg("failed to unmarshal job")
		return
	}
	if err := handler.Handle(job); err != nil {
		log.Error().Str("type", job.Type).Err(err).Msg("job failed")
		return
	}
	log.Info().Str("type", job.Type).Msg("job processed")
}
