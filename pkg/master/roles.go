package master

import "github.com/clustermaster/masterd/pkg/types"

// dispatchUpdateWeights overwrites the weight of each named role,
// creating a RoleState for roles not seen before. Every named role
// must be approved for call.Principal before any weight is written.
func (m *Master) dispatchUpdateWeights(call *types.Call) *Result {
	if call.UpdateWeights == nil {
		return &Result{Err: errMissingPayload(call.Type)}
	}
	for _, w := range call.UpdateWeights.Weights {
		if !m.authorizer.ApproveRole(call.Principal, w.Name) {
			return &Result{Err: errForbidden("principal is not authorized to update role " + w.Name)}
		}
	}
	for _, w := range call.UpdateWeights.Weights {
		role, ok := m.roles[w.Name]
		if !ok {
			role = &types.RoleState{Name: w.Name}
			m.roles[w.Name] = role
		}
		role.Weight = w.Weight
	}
	return &Result{Accepted: true}
}

// dispatchSetQuota sets or overwrites a role's quota. SET_QUOTA and
// UPDATE_QUOTA share this handler: SET_QUOTA is UPDATE_QUOTA's legacy
// name for the same wholesale replacement.
func (m *Master) dispatchSetQuota(call *types.Call) *Result {
	var roleName string
	var quota types.Resources
	switch {
	case call.SetQuota != nil:
		roleName, quota = call.SetQuota.Role, call.SetQuota.Quota
	case call.UpdateQuota != nil:
		roleName, quota = call.UpdateQuota.Role, call.UpdateQuota.Quota
	default:
		return &Result{Err: errMissingPayload(call.Type)}
	}
	if roleName == "" {
		return &Result{Err: errInvalidCall("quota call requires a role")}
	}
	if !m.authorizer.ApproveRole(call.Principal, roleName) {
		return &Result{Err: errForbidden("principal is not authorized to set quota for role " + roleName)}
	}

	role, ok := m.roles[roleName]
	if !ok {
		role = &types.RoleState{Name: roleName}
		m.roles[roleName] = role
	}
	role.Quota = quota
	return &Result{Accepted: true}
}

// dispatchRemoveQuota clears a role's quota back to unlimited.
func (m *Master) dispatchRemoveQuota(call *types.Call) *Result {
	if call.RemoveQuota == nil {
		return &Result{Err: errMissingPayload(call.Type)}
	}
	if !m.authorizer.ApproveRole(call.Principal, call.RemoveQuota.Role) {
		return &Result{Err: errForbidden("principal is not authorized to remove quota for role " + call.RemoveQuota.Role)}
	}
	role, ok := m.roles[call.RemoveQuota.Role]
	if !ok {
		return &Result{Err: errInvalidCall("unknown role " + call.RemoveQuota.Role)}
	}
	role.Quota = types.Resources{}
	return &Result{Accepted: true}
}
