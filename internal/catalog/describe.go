package catalog

import (
	"github.com/bigearthnet-go/bencommon/internal/dataset"
	"github.com/bigearthnet-go/bencommon/internal/patch"
)

// PatchInfo summarizes the metadata of one physical patch.
type PatchInfo struct {
	S1Name           string
	S2Name           string
	Split            dataset.Split
	Country          dataset.Country
	Season           dataset.Season
	Snowy            bool
	CloudyOrShadowy  bool
	Has19ClassTarget bool
}

// Describe returns the metadata of each named patch, in input order. Names
// may be S1 or S2 names; anything else is a validation error.
func (c *Catalog) Describe(names ...string) ([]PatchInfo, error) {
	infos := make([]PatchInfo, 0, len(names))
	for _, name := range names {
		info, err := c.describe(name)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (c *Catalog) describe(name string) (PatchInfo, error) {
	var info PatchInfo
	var err error
	switch {
	case patch.IsS1(name):
		info.S1Name = name
		info.S2Name, err = c.S1ToS2(name)
	case patch.IsS2(name):
		info.S2Name = name
		info.S1Name, err = c.S2ToS1(name)
	default:
		err = invalidName(name)
	}
	if err != nil {
		return PatchInfo{}, err
	}

	s2 := info.S2Name
	if info.Split, err = c.OriginalSplitOf(s2); err != nil {
		return PatchInfo{}, err
	}
	if info.Country, err = c.CountryOf(s2); err != nil {
		return PatchInfo{}, err
	}
	if info.Season, err = c.SeasonOf(s2); err != nil {
		return PatchInfo{}, err
	}
	if info.Snowy, err = c.IsSnowy(s2); err != nil {
		return PatchInfo{}, err
	}
	if info.CloudyOrShadowy, err = c.IsCloudyOrShadowy(s2); err != nil {
		return PatchInfo{}, err
	}
	if info.Has19ClassTarget, err = c.Has19ClassTarget(s2); err != nil {
		return PatchInfo{}, err
	}
	return info, nil
}
