package jobs

import (
	"context"
	"log"

	"taldaor/internal/authprovider"
	"taldaor/internal/models"
	"taldaor/internal/repositories"
)

const reconcileBatchSize = 50

// Reconciler repairs orphaned identities: provider users whose paired profile
// write failed during provisioning. Each unresolved incident carries enough
// detail (email, identity id, role) to retry the upsert verbatim.
type Reconciler struct {
	incidents repositories.IncidentRepository
	profiles  repositories.ProfileRepository
	provider  authprovider.AdminClient
}

func NewReconciler(incidents repositories.IncidentRepository, profiles repositories.ProfileRepository, provider authprovider.AdminClient) *Reconciler {
	return &Reconciler{
		incidents: incidents,
		profiles:  profiles,
		provider:  provider,
	}
}

// Run processes one batch of unresolved incidents. Failures are logged and
// left unresolved for the next run.
func (r *Reconciler) Run(ctx context.Context) error {
	incidents, err := r.incidents.ListUnresolved(ctx, reconcileBatchSize)
	if err != nil {
		log.Printf("ERROR: reconciler: listing incidents: %v", err)
		return err
	}
	if len(incidents) == 0 {
		return nil
	}

	log.Printf("Reconciler processing %d unresolved provisioning incidents", len(incidents))

	repaired := 0
	for _, incident := range incidents {
		if err := r.reconcile(ctx, incident); err != nil {
			log.Printf("WARN: reconciler: incident %s (email=%s): %v", incident.ID, incident.Email, err)
			continue
		}
		repaired++
	}

	log.Printf("Reconciler resolved %d of %d incidents", repaired, len(incidents))
	return nil
}

func (r *Reconciler) reconcile(ctx context.Context, incident *models.ProvisioningIncident) error {
	identity, err := r.provider.GetUserByEmail(ctx, incident.Email)
	if err != nil {
		return err
	}

	// Identity deleted since the incident was recorded; nothing left to pair.
	if identity == nil {
		return r.incidents.MarkResolved(ctx, incident.ID)
	}

	profile := &models.Profile{
		ID:    incident.IdentityID,
		Email: incident.Email,
		Role:  incident.Role,
	}
	if err := r.profiles.Upsert(ctx, profile); err != nil {
		return err
	}

	return r.incidents.MarkResolved(ctx, incident.ID)
}
