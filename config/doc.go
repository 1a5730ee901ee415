// Package config loads navmesh runtime settings from the environment.
//
// Every setting has a NAVMESH_ prefixed variable and a default, so an empty
// environment yields a usable configuration:
//
//	NAVMESH_LOG_LEVEL           debug, info, warn or error (info)
//	NAVMESH_LOG_FORMAT          text or json (text)
//	NAVMESH_LOG_SOURCE          include source locations (false)
//	NAVMESH_SELECT_ON_INSERT    select entries added to collections (true)
//	NAVMESH_DEFERRED_DISCOVERY  wait for visibility before scanning (true)
//	NAVMESH_OTEL_ENABLED        export traces when an endpoint is set (true)
//	NAVMESH_OTEL_ENDPOINT       OTLP/HTTP endpoint URL (empty disables tracing)
//	NAVMESH_SERVICE_NAME        service.name resource attribute (navmesh)
package config
