// Package mediafake is an in-memory media service for tests.
package mediafake

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"media-pipeline/internal/domain/entities"
	"media-pipeline/internal/domain/repositories"
)

type Platform struct {
	mu sync.RWMutex

	Assets                map[string]*entities.Asset
	Metadata              map[string][]entities.AssetFileMetadata
	Jobs                  map[string]*entities.Job
	Processors            []entities.MediaProcessor
	NotificationEndpoints map[string]*entities.NotificationEndpoint
	ContentKeys           map[string]*entities.ContentKey
	AuthorizationPolicies map[string]*entities.Policy
	DeliveryPolicies      map[string]*entities.Policy
	AssetDeliveryPolicies map[string][]string
	Locators              []entities.Locator
	SubmittedJobs         []entities.JobSpec
	ReservedUnits         entities.ReservedUnits
	StreamingBase         string

	// Errors forces the named method to fail.
	Errors map[string]error

	nextID int
}

func New() *Platform {
	return &Platform{
		Assets:                make(map[string]*entities.Asset),
		Metadata:              make(map[string][]entities.AssetFileMetadata),
		Jobs:                  make(map[string]*entities.Job),
		NotificationEndpoints: make(map[string]*entities.NotificationEndpoint),
		ContentKeys:           make(map[string]*entities.ContentKey),
		AuthorizationPolicies: make(map[string]*entities.Policy),
		DeliveryPolicies:      make(map[string]*entities.Policy),
		AssetDeliveryPolicies: make(map[string][]string),
		ReservedUnits:         entities.ReservedUnits{CurrentReservedUnits: 1, ReservedUnitType: entities.ReservedUnitBasic},
		StreamingBase:         "https://streaming.example.test",
		Errors:                make(map[string]error),
	}
}

var _ repositories.MediaPlatform = (*Platform)(nil)

// id must be called with p.mu held.
func (p *Platform) id(prefix string) string {
	p.nextID++
	return fmt.Sprintf("%s-%d", prefix, p.nextID)
}

func (p *Platform) fail(method string) error {
	return p.Errors[method]
}

func (p *Platform) AddAsset(a entities.Asset) *entities.Asset {
	p.mu.Lock()
	defer p.mu.Unlock()
	if a.ID == "" {
		a.ID = p.id("asset")
	}
	p.Assets[a.ID] = &a
	return &a
}

func (p *Platform) AddJob(j entities.Job) *entities.Job {
	p.mu.Lock()
	defer p.mu.Unlock()
	if j.ID == "" {
		j.ID = p.id("job")
	}
	p.Jobs[j.ID] = &j
	return &j
}

func (p *Platform) AddPolicies(authorization, delivery []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, name := range authorization {
		p.AuthorizationPolicies[name] = &entities.Policy{ID: p.id("authpolicy"), Name: name}
	}
	for _, name := range delivery {
		p.DeliveryPolicies[name] = &entities.Policy{ID: p.id("deliverypolicy"), Name: name}
	}
}

// SetJobState changes the state of a stored job.
func (p *Platform) SetJobState(id string, state entities.JobState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if j, ok := p.Jobs[id]; ok {
		j.State = state
	}
}

func (p *Platform) Asset(id string) (entities.Asset, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	a, ok := p.Assets[id]
	if !ok {
		return entities.Asset{}, false
	}
	return *a, true
}

func (p *Platform) KeysForAsset(id string) []entities.ContentKey {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var keys []entities.ContentKey
	for _, k := range p.ContentKeys {
		if k.AssetID == id {
			keys = append(keys, *k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Name < keys[j].Name })
	return keys
}

func (p *Platform) GetAsset(_ context.Context, id string) (*entities.Asset, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.fail("GetAsset"); err != nil {
		return nil, err
	}
	a, ok := p.Assets[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (p *Platform) CreateAssetFromBlob(_ context.Context, name, blobURL string) (*entities.Asset, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.fail("CreateAssetFromBlob"); err != nil {
		return nil, err
	}
	a := &entities.Asset{ID: p.id("asset"), Name: name, Created: time.Now().UTC()}
	p.Assets[a.ID] = a
	cp := *a
	return &cp, nil
}

func (p *Platform) UpdateAsset(_ context.Context, asset *entities.Asset) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.fail("UpdateAsset"); err != nil {
		return err
	}
	a, ok := p.Assets[asset.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	a.Name = asset.Name
	a.AlternateID = asset.AlternateID
	return nil
}

func (p *Platform) DeleteAsset(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.fail("DeleteAsset"); err != nil {
		return err
	}
	if _, ok := p.Assets[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(p.Assets, id)
	return nil
}

func (p *Platform) GetAssetMetadata(_ context.Context, id string) ([]entities.AssetFileMetadata, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.fail("GetAssetMetadata"); err != nil {
		return nil, err
	}
	if _, ok := p.Assets[id]; !ok {
		return nil, repositories.ErrNotFound
	}
	return p.Metadata[id], nil
}

func (p *Platform) StreamingURL(_ context.Context, id string) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, l := range p.Locators {
		if l.AssetID == id && l.Type == entities.LocatorOnDemandOrigin {
			return l.Path, nil
		}
	}
	return "", repositories.ErrNotFound
}

func (p *Platform) GetJob(_ context.Context, id string) (*entities.Job, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.fail("GetJob"); err != nil {
		return nil, err
	}
	j, ok := p.Jobs[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

// SubmitJob creates one output asset per task.
func (p *Platform) SubmitJob(_ context.Context, spec entities.JobSpec) (*entities.Job, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.fail("SubmitJob"); err != nil {
		return nil, err
	}

	job := &entities.Job{ID: p.id("job"), Name: spec.Name, Priority: spec.Priority, State: entities.JobStateQueued}
	for _, ts := range spec.Tasks {
		out := &entities.Asset{ID: p.id("asset"), Name: ts.OutputAssetName}
		p.Assets[out.ID] = out
		job.Tasks = append(job.Tasks, entities.Task{
			ID:             p.id("task"),
			Name:           ts.Name,
			InputAssetIDs:  append([]string(nil), ts.InputAssetIDs...),
			OutputAssetIDs: []string{out.ID},
		})
	}
	p.Jobs[job.ID] = job
	p.SubmittedJobs = append(p.SubmittedJobs, spec)

	cp := *job
	return &cp, nil
}

func (p *Platform) CountJobs(_ context.Context, state entities.JobState) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	n := 0
	for _, j := range p.Jobs {
		if j.State == state {
			n++
		}
	}
	return n, nil
}

func (p *Platform) ListProcessors(_ context.Context, name string) ([]entities.MediaProcessor, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []entities.MediaProcessor
	for _, mp := range p.Processors {
		if mp.Name == name {
			out = append(out, mp)
		}
	}
	return out, nil
}

func (p *Platform) EncodingReservedUnits(context.Context) (*entities.ReservedUnits, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	units := p.ReservedUnits
	return &units, nil
}

func (p *Platform) FindNotificationEndpoint(_ context.Context, name string) (*entities.NotificationEndpoint, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.fail("FindNotificationEndpoint"); err != nil {
		return nil, err
	}
	e, ok := p.NotificationEndpoints[name]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (p *Platform) CreateNotificationEndpoint(_ context.Context, name, address string) (*entities.NotificationEndpoint, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e := &entities.NotificationEndpoint{ID: p.id("endpoint"), Name: name, Type: entities.NotificationEndpointTypeQueue, Address: address}
	p.NotificationEndpoints[name] = e
	cp := *e
	return &cp, nil
}

func (p *Platform) CreateContentKey(_ context.Context, key entities.ContentKey) (*entities.ContentKey, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.fail("CreateContentKey"); err != nil {
		return nil, err
	}
	if key.ID == "" {
		key.ID = p.id("key")
	}
	p.ContentKeys[key.ID] = &key
	cp := key
	return &cp, nil
}

func (p *Platform) SetKeyAuthorizationPolicy(_ context.Context, keyID, policyID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	k, ok := p.ContentKeys[keyID]
	if !ok {
		return repositories.ErrNotFound
	}
	k.AuthorizationPolicyID = policyID
	return nil
}

func (p *Platform) FindAuthorizationPolicy(_ context.Context, name string) (*entities.Policy, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	pol, ok := p.AuthorizationPolicies[name]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *pol
	return &cp, nil
}

func (p *Platform) FindDeliveryPolicy(_ context.Context, name string) (*entities.Policy, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	pol, ok := p.DeliveryPolicies[name]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *pol
	return &cp, nil
}

func (p *Platform) AttachDeliveryPolicy(_ context.Context, assetID, policyID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.Assets[assetID]; !ok {
		return repositories.ErrNotFound
	}
	p.AssetDeliveryPolicies[assetID] = append(p.AssetDeliveryPolicies[assetID], policyID)
	return nil
}

func (p *Platform) CreateLocator(_ context.Context, assetID string, permissions entities.AccessPermission, duration time.Duration) (*entities.Locator, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.Assets[assetID]; !ok {
		return nil, repositories.ErrNotFound
	}
	id := p.id("locator")
	l := entities.Locator{
		ID:             id,
		AssetID:        assetID,
		Type:           entities.LocatorOnDemandOrigin,
		Permissions:    permissions,
		Path:           p.StreamingBase + "/" + id + "/",
		ExpirationTime: time.Now().UTC().Add(duration),
	}
	p.Locators = append(p.Locators, l)
	return &l, nil
}
