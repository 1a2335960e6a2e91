package logger

import "log/slog"

// Error records a single error under the key "error". Nil yields an empty
// attribute, which slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// TenantID records the tenant identifier under the key "tenant_id".
func TenantID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("tenant_id", id)
}

// PlanID records the plan identifier under the key "plan_id".
func PlanID(id string) slog.Attr {
	return slog.String("plan_id", id)
}

// Resource records a limited resource name under the key "resource".
func Resource(name string) slog.Attr {
	return slog.String("resource", name)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Duration records a duration under the key "duration".
func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}
