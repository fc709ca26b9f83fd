package plugin

// Hook identifies a lifecycle point at which the host calls into plugins.
type Hook string

const (
	HookInit                Hook = "init"
	HookBeforeGenerate      Hook = "before_generate"
	HookAfterGenerate       Hook = "after_generate"
	HookBeforeDeploy        Hook = "before_deploy"
	HookAfterDeploy         Hook = "after_deploy"
	HookNewPost             Hook = "new_post"
	HookNewPage             Hook = "new_page"
	HookClean               Hook = "clean"
	HookConfigChanged       Hook = "config_changed"
	HookBeforePostRender    Hook = "before_post_render"
	HookAfterPostRender     Hook = "after_post_render"
	HookBeforeRouteGenerate Hook = "before_route_generate"
	HookAfterRouteGenerate  Hook = "after_route_generate"
	HookBeforeServerStart   Hook = "before_server_start"
	HookAfterServerStart    Hook = "after_server_start"
)

// IsValid reports whether h is one of the defined hooks.
func (h Hook) IsValid() bool {
	switch h {
	case HookInit, HookBeforeGenerate, HookAfterGenerate,
		HookBeforeDeploy, HookAfterDeploy,
		HookNewPost, HookNewPage, HookClean, HookConfigChanged,
		HookBeforePostRender, HookAfterPostRender,
		HookBeforeRouteGenerate, HookAfterRouteGenerate,
		HookBeforeServerStart, HookAfterServerStart:
		return true
	}
	return false
}

func (h Hook) String() string { return string(h) }
