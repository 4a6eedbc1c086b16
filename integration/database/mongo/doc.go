// Package mongo bootstraps a MongoDB client with connection retries.
//
//	var cfg mongo.Config
//	config.MustLoad(&cfg)
//
//	db, err := mongo.NewWithDatabase(ctx, cfg, "")
//	if err != nil {
//		return err
//	}
//	defer db.Client().Disconnect(context.Background())
//
//	store, err := mongostore.New(ctx, db.Collection("sessions"))
//
// Settings come from MONGODB_* environment variables; see Config.
package mongo
