package manager

import (
	"time"

	"nlpd/internal/backend"
	"nlpd/internal/catalog"
	"nlpd/internal/engine"
	"nlpd/internal/lang"
	"nlpd/internal/registry"
	"nlpd/pkg/types"
)

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	now := time.Now()
	return types.StatusResponse{
		Registries: []types.RegistryStatus{
			registryStatus(m.translators.Name(), m.translators.Snapshot()),
			registryStatus(m.encoders.Name(), m.encoders.Snapshot()),
			registryStatus(m.summarizers.Name(), m.summarizers.Snapshot()),
			registryStatus(m.answerers.Name(), m.answerers.Snapshot()),
			registryStatus(m.classifiers.Name(), m.classifiers.Snapshot()),
			registryStatus(m.taggers.Name(), m.taggers.Snapshot()),
		},
		Ready:          m.Ready(),
		BuildsTotal:    m.buildsTotal.Load(),
		BuildFailures:  m.buildFailures.Load(),
		LastError:      m.lastError(),
		UptimeSeconds:  int64(now.Sub(m.startTime).Seconds()),
		ServerTimeUnix: now.Unix(),
	}
}

func registryStatus(name string, snap []registry.HandleStatus) types.RegistryStatus {
	rs := types.RegistryStatus{Capability: name, Handles: make([]types.HandleStatus, len(snap))}
	for i, s := range snap {
		hs := types.HandleStatus{
			Key:           s.Key,
			BuiltAt:       s.BuiltAt.Unix(),
			Calls:         s.Calls,
			QueueLen:      s.QueueLen,
			Inflight:      s.Inflight,
			MaxQueueDepth: s.MaxQueueDepth,
		}
		if s.Calls > 0 {
			hs.LastUsed = s.LastUsed.Unix()
		}
		rs.Handles[i] = hs
	}
	return rs
}

// Models lists the catalog with the backends that can serve it.
func (m *Manager) Models() types.ModelsResponse {
	specs := m.catalog.Specs()
	resp := types.ModelsResponse{Models: make([]types.Model, 0, len(specs))}
	for _, s := range specs {
		mdl := types.Model{
			Key:        s.Key(),
			Capability: string(s.Capability),
			Variant:    s.Variant,
			Backend:    s.Backend,
			Model:      s.Model,
			Loaded:     m.loaded(s),
		}
		if s.Capability == engine.Translation {
			mdl.Source = s.Pair.Source.String()
			mdl.Target = s.Pair.Target.String()
		}
		resp.Models = append(resp.Models, mdl)
	}
	for _, b := range m.backends.List() {
		resp.Backends = append(resp.Backends, backendInfo(b))
	}
	return resp
}

func backendInfo(b backend.Info) types.Backend {
	out := types.Backend{Name: b.Name, Capabilities: make([]string, len(b.Capabilities))}
	for i, c := range b.Capabilities {
		out.Capabilities[i] = string(c)
	}
	return out
}

func (m *Manager) loaded(s engine.Spec) bool {
	v := catalog.Variant(s.Variant)
	var ok bool
	switch s.Capability {
	case engine.Translation:
		_, ok = m.translators.Lookup(s.Pair)
	case engine.Embeddings:
		_, ok = m.encoders.Lookup(v)
	case engine.Summarization:
		_, ok = m.summarizers.Lookup(v)
	case engine.QuestionAnswering:
		_, ok = m.answerers.Lookup(v)
	case engine.ZeroShot:
		_, ok = m.classifiers.Lookup(v)
	case engine.TokenClassification:
		_, ok = m.taggers.Lookup(v)
	}
	return ok
}

// Languages lists the supported language codes.
func (m *Manager) Languages() types.LanguagesResponse {
	all := lang.All()
	resp := types.LanguagesResponse{Languages: make([]types.Language, len(all))}
	for i, c := range all {
		resp.Languages[i] = types.Language{Code: c.String(), Name: c.Name()}
	}
	return resp
}
