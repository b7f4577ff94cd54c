package planner

import "github.com/toyz/synapse/internal/models"

// selectResponse picks the response mapping: a file destination wins over
// a byte result, which wins over no result, which wins over JSON.
func selectResponse(m *models.MethodDescriptor, file *models.ParameterDescriptor) models.ResponseKind {
	switch {
	case file != nil:
		return models.ResponseFile
	case m.Return.Role.HasValue() && (m.Return.Type == "[]byte" || m.Return.Type == "[]uint8"):
		return models.ResponseBytes
	case !m.Return.Role.HasValue():
		return models.ResponseNone
	}
	return models.ResponseJSON
}

// resolveContentType applies parameter, then method, then interface
// overrides. Empty means the runtime default for the body kind.
func resolveContentType(iface *models.InterfaceDescriptor, m *models.MethodDescriptor, body *models.ParameterDescriptor) string {
	if body == nil {
		return ""
	}
	for _, ct := range []string{body.ContentType, m.ContentType, iface.ContentType} {
		if ct != "" {
			return ct
		}
	}
	return ""
}
