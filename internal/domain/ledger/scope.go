package ledger

import (
	"sort"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// ClientScope filtro por cliente para reportes (stock por proyecto/cliente).
//
// Regla de negocio: un movimiento pertenece al cliente si su proyecto es de ese
// cliente O si su client_owner es directamente ese cliente. El OR es deliberado.
// No altera la aritmética del kardex, solo qué movimientos entran al pliegue.
type ClientScope struct {
	Client     string
	ProjectIDs map[string]struct{}
}

// NewClientScope arma el alcance con los proyectos del cliente.
func NewClientScope(client string, projects []*entity.Project) *ClientScope {
	s := &ClientScope{Client: client, ProjectIDs: make(map[string]struct{}, len(projects))}
	for _, p := range projects {
		if p.Client == client {
			s.ProjectIDs[p.ID] = struct{}{}
		}
	}
	return s
}

// Matches aplica el predicado. Un alcance nil acepta todo.
func (s *ClientScope) Matches(m *entity.Movement) bool {
	if s == nil {
		return true
	}
	if m.ProjectID != "" {
		if _, ok := s.ProjectIDs[m.ProjectID]; ok {
			return true
		}
	}
	return s.Client != "" && m.ClientOwner == s.Client
}

// ProjectIDList IDs de proyecto ordenados (para parámetros SQL).
func (s *ClientScope) ProjectIDList() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.ProjectIDs))
	for id := range s.ProjectIDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
