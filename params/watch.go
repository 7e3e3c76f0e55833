package params

import (
	"github.com/fsnotify/fsnotify"

	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/log"
)

// WatchAndReloadConfig reloads the config whenever the file changes on
// disk. Runs until the process exits.
func WatchAndReloadConfig() {
	configLock.RLock()
	filePath := configFile
	configLock.RUnlock()
	if filePath == "" {
		log.Warn("config watcher not started, no config file loaded")
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Error("create config watcher failed", "err", err)
		return
	}
	if err := watcher.Add(filePath); err != nil {
		log.Error("watch config file failed", "configFile", filePath, "err", err)
		return
	}
	log.Info("start config watcher", "configFile", filePath)

	go func() {
		defer func() {
			_ = watcher.Close()
		}()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					log.Info("config file changed, reloading", "event", event.Name)
					ReloadConfig()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Error("config watcher error", "err", err)
			}
		}
	}()
}
