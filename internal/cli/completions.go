package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/tasklists/internal/render"
	"github.com/valter-silva-au/tasklists/pkg/models"
)

// loadForCompletion reads the stored state without touching the event log.
func loadForCompletion() *models.AppState {
	if Persist == nil {
		return nil
	}
	res, err := Persist.Load()
	if err != nil {
		return nil
	}
	return res.State
}

// completeListRefs offers list ids with their names as descriptions.
func completeListRefs(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	state := loadForCompletion()
	if state == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var refs []string
	for _, l := range state.Lists {
		if strings.HasPrefix(l.ID, toComplete) {
			refs = append(refs, l.ID+"\t"+l.Name)
		}
	}
	return refs, cobra.ShellCompDirectiveNoFileComp
}

// completeItemIDs offers the selected list's item ids, abbreviated the way
// the text view prints them, with the task text as description.
func completeItemIDs(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	state := loadForCompletion()
	if state == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	list := state.ActiveList()
	if list == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var ids []string
	for _, it := range list.Items {
		if strings.HasPrefix(it.ID, toComplete) {
			id := render.ShortID(it.ID)
			if len(toComplete) >= len(id) {
				id = it.ID
			}
			ids = append(ids, id+"\t"+it.Text)
		}
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}

func init() {
	listUseCmd.ValidArgsFunction = completeListRefs
	toggleCmd.ValidArgsFunction = completeItemIDs
	rmCmd.ValidArgsFunction = completeItemIDs
}
