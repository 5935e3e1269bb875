package service

import (
	"context"
	"testing"

	"cajaflow/internal/dto"
	"cajaflow/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cerrarPendiente opens and closes a session, leaving a PENDIENTE cierre.
func cerrarPendiente(t *testing.T, b *banco, cajero Actor, caja *model.Caja, inicial, contado string) *dto.CierreResponse {
	t.Helper()
	abrir(t, b, cajero, caja, inicial)
	resp, err := b.cierreSvc.Cerrar(context.Background(), cajero, dto.CerrarCajaRequest{
		MontoContado: dec(contado),
	})
	require.NoError(t, err)
	return resp
}

func TestAprobarConsolidaCierre(t *testing.T) {
	b := newBanco()
	caja := b.nuevaCaja("Caja 1", true)
	cierre := cerrarPendiente(t, b, actorCajero(), caja, "100", "100")
	super := actorSupervisor()
	id := uuid.MustParse(cierre.ID)

	resp, err := b.aprobacionSvc.Aprobar(context.Background(), super, id)
	require.NoError(t, err)
	assert.Equal(t, model.CierreConsolidada, resp.Estado)
	require.NotNil(t, resp.AprobadorID)
	assert.Equal(t, super.ID.String(), *resp.AprobadorID)
	assert.NotNil(t, resp.FechaAprobacion)

	// CONSOLIDADA es terminal.
	_, err = b.aprobacionSvc.Aprobar(context.Background(), super, id)
	assert.ErrorIs(t, err, ErrEstadoInvalido)
	_, err = b.aprobacionSvc.Rechazar(context.Background(), super, id, dto.RechazarCierreRequest{Motivo: "tarde"})
	assert.ErrorIs(t, err, ErrEstadoInvalido)
}

func TestAprobarRequiereRolDeSupervision(t *testing.T) {
	b := newBanco()
	caja := b.nuevaCaja("Caja 1", true)
	cierre := cerrarPendiente(t, b, actorCajero(), caja, "100", "100")

	_, err := b.aprobacionSvc.Aprobar(context.Background(), actorCajero(), uuid.MustParse(cierre.ID))
	assert.ErrorIs(t, err, ErrNoAutorizado)
}

func TestAprobarCierreInexistente(t *testing.T) {
	b := newBanco()

	_, err := b.aprobacionSvc.Aprobar(context.Background(), actorSupervisor(), uuid.New())
	assert.ErrorIs(t, err, ErrCierreNoEncontrado)
}

func TestRechazarYCorregir(t *testing.T) {
	b := newBanco()
	caja := b.nuevaCaja("Caja 1", true)
	cajero := actorCajero()

	// esperado 120 (100 inicial + 50 − 30), contado 100 → diferencia −20.
	a := abrir(t, b, cajero, caja, "100")
	b.cargarMovimiento(a, model.MovimientoIngreso, "50", a.OpenedAt)
	b.cargarMovimiento(a, model.MovimientoGasto, "-30", a.OpenedAt)
	cerrado, err := b.cierreSvc.Cerrar(context.Background(), cajero, dto.CerrarCajaRequest{
		MontoContado: dec("100"),
	})
	require.NoError(t, err)
	id := uuid.MustParse(cerrado.ID)
	super := actorSupervisor()

	rechazado, err := b.aprobacionSvc.Rechazar(context.Background(), super, id, dto.RechazarCierreRequest{
		Motivo: "faltante sin justificar",
	})
	require.NoError(t, err)
	assert.Equal(t, model.CierreRechazada, rechazado.Estado)
	require.NotNil(t, rechazado.MotivoRechazo)
	assert.Equal(t, "faltante sin justificar", *rechazado.MotivoRechazo)

	corregido, err := b.aprobacionSvc.Corregir(context.Background(), cajero, id, dto.CorregirCierreRequest{
		MontoContado: dec("115"),
	})
	require.NoError(t, err)

	// La diferencia se rederiva contra el esperado ORIGINAL, nunca recalculado.
	assert.Equal(t, model.CierrePendiente, corregido.Estado)
	assert.True(t, corregido.MontoEsperado.Equal(dec("120")))
	assert.True(t, corregido.Diferencia.Equal(dec("-5")))
	assert.Nil(t, corregido.AprobadorID)
	assert.Nil(t, corregido.MotivoRechazo)

	// Los valores rechazados quedan preservados como revisión.
	revs, err := b.cierreSvc.Revisiones(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, revs, 1)
	assert.True(t, revs[0].MontoContado.Equal(dec("100")))
	assert.True(t, revs[0].Diferencia.Equal(dec("-20")))
	require.NotNil(t, revs[0].MotivoRechazo)
	assert.Equal(t, "faltante sin justificar", *revs[0].MotivoRechazo)

	// El libro se reconcilia con un AJUSTE delta: −5 − (−20) = 15.
	ajustes := contarAjustes(b)
	require.Len(t, ajustes, 2) // el del cierre original y el de la corrección
	assert.True(t, ajustes[1].Monto.Equal(dec("15")))

	// La corrección reingresa a la cola de revisión.
	assert.Len(t, b.notificador.notificados, 2)
}

func TestCorregirSoloElPropietario(t *testing.T) {
	b := newBanco()
	caja := b.nuevaCaja("Caja 1", true)
	cajero := actorCajero()
	cierre := cerrarPendiente(t, b, cajero, caja, "100", "90")
	id := uuid.MustParse(cierre.ID)

	_, err := b.aprobacionSvc.Rechazar(context.Background(), actorSupervisor(), id, dto.RechazarCierreRequest{Motivo: "revisar"})
	require.NoError(t, err)

	// Ni otro cajero ni el supervisor pueden corregir: solo el dueño.
	_, err = b.aprobacionSvc.Corregir(context.Background(), actorCajero(), id, dto.CorregirCierreRequest{MontoContado: dec("100")})
	assert.ErrorIs(t, err, ErrNoEsPropietario)
	_, err = b.aprobacionSvc.Corregir(context.Background(), actorSupervisor(), id, dto.CorregirCierreRequest{MontoContado: dec("100")})
	assert.ErrorIs(t, err, ErrNoEsPropietario)
}

func TestCorregirSoloDesdeRechazada(t *testing.T) {
	b := newBanco()
	caja := b.nuevaCaja("Caja 1", true)
	cajero := actorCajero()
	cierre := cerrarPendiente(t, b, cajero, caja, "100", "90")

	_, err := b.aprobacionSvc.Corregir(context.Background(), cajero, uuid.MustParse(cierre.ID), dto.CorregirCierreRequest{
		MontoContado: dec("100"),
	})
	assert.ErrorIs(t, err, ErrEstadoInvalido)
}

func TestConsolidarLote(t *testing.T) {
	b := newBanco()
	super := actorSupervisor()
	c1 := cerrarPendiente(t, b, actorCajero(), b.nuevaCaja("Caja 1", true), "100", "100")
	c2 := cerrarPendiente(t, b, actorCajero(), b.nuevaCaja("Caja 2", true), "200", "190")

	resumen, err := b.aprobacionSvc.ConsolidarLote(context.Background(), super, dto.ConsolidarLoteRequest{
		CierreIDs: []string{c1.ID, c2.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resumen.Cantidad)
	assert.True(t, resumen.TotalEsperado.Equal(dec("300")))
	assert.True(t, resumen.TotalContado.Equal(dec("290")))
	assert.True(t, resumen.TotalDiferencia.Equal(dec("-10")))

	for _, id := range []string{c1.ID, c2.ID} {
		c, err := b.cierreSvc.Obtener(context.Background(), uuid.MustParse(id))
		require.NoError(t, err)
		assert.Equal(t, model.CierreConsolidada, c.Estado)
	}
}

func TestConsolidarLoteAbortaConNoPendientes(t *testing.T) {
	b := newBanco()
	super := actorSupervisor()
	c1 := cerrarPendiente(t, b, actorCajero(), b.nuevaCaja("Caja 1", true), "100", "100")
	c2 := cerrarPendiente(t, b, actorCajero(), b.nuevaCaja("Caja 2", true), "100", "100")

	_, err := b.aprobacionSvc.Aprobar(context.Background(), super, uuid.MustParse(c2.ID))
	require.NoError(t, err)

	_, err = b.aprobacionSvc.ConsolidarLote(context.Background(), super, dto.ConsolidarLoteRequest{
		CierreIDs: []string{c1.ID, c2.ID},
	})
	assert.ErrorIs(t, err, ErrEstadoInvalido)
}

func TestListarPorEstado(t *testing.T) {
	b := newBanco()
	super := actorSupervisor()
	c1 := cerrarPendiente(t, b, actorCajero(), b.nuevaCaja("Caja 1", true), "100", "100")
	cerrarPendiente(t, b, actorCajero(), b.nuevaCaja("Caja 2", true), "100", "100")

	_, err := b.aprobacionSvc.Aprobar(context.Background(), super, uuid.MustParse(c1.ID))
	require.NoError(t, err)

	pendientes, err := b.aprobacionSvc.ListarPorEstado(context.Background(), model.CierrePendiente, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pendientes.Total)

	consolidadas, err := b.aprobacionSvc.ListarPorEstado(context.Background(), model.CierreConsolidada, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), consolidadas.Total)
}
